package segment

import (
	"fmt"
	"strings"
)

// Kind classifies a heading within a legal instrument.
type Kind string

const (
	KindChapter    Kind = "chapter"    // CAPÍTULO subdivisions
	KindSection    Kind = "section"    // SECCIÓN subdivisions
	KindArticle    Kind = "article"    // numbered ARTÍCULO units
	KindTransitory Kind = "transitory" // TRANSITORIOS closing block
	KindPreamble   Kind = "preamble"   // text before the first heading (retained only on request)
)

// Valid reports whether k is one of the known heading kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindChapter, KindSection, KindArticle, KindTransitory, KindPreamble:
		return true
	}
	return false
}

// Segment is one addressable unit recovered from a legal instrument.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"` // canonical heading, e.g. "ARTÍCULO 12 Bis"
	Body  string `json:"body"`  // text up to the next heading; may be empty
	Order int    `json:"order"` // document-linear position, 1-based
}

// ExtractionResult is the ordered sequence of segments from one document.
type ExtractionResult []Segment

// Validate checks the structural invariants of a result: orders dense and
// 1-based, titles non-empty, kinds known. Returns the first violation.
func (r ExtractionResult) Validate() error {
	for i, s := range r {
		if s.Order != i+1 {
			return fmt.Errorf("segment %d: order %d, want %d", i, s.Order, i+1)
		}
		if !s.Kind.Valid() {
			return fmt.Errorf("segment %d: unknown kind %q", i, s.Kind)
		}
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("segment %d: empty title", i)
		}
	}
	return nil
}
