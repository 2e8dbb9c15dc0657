package extractor

import "github.com/lexmx/articulado/internal/segment"

// Extractor binds one document's text to a classification rule set. The
// pipeline is the same three stages for every class; rule sets only
// parameterise them.
type Extractor struct {
	rules *RuleSet
	text  string
}

// ForClassification returns an extractor for the document, or ok=false when
// no rule set is registered for the classification. Unknown classifications
// are not an error; the caller decides.
func ForClassification(classification, text string) (*Extractor, bool) {
	rs, ok := rulesFor(classification)
	if !ok {
		return nil, false
	}
	return &Extractor{rules: rs, text: text}, true
}

// Extract runs normalise, scan, assemble and returns the ordered segments.
// Pure: the same input yields an identical result on every call.
func (e *Extractor) Extract() segment.ExtractionResult {
	normalized := e.rules.Normalize(e.text)
	if normalized == "" {
		return segment.ExtractionResult{}
	}
	return e.rules.assemble(normalized, e.rules.scan(normalized))
}

// Extract recovers the ordered segments of a classified document. Unknown
// classifications report ok=false; empty or whitespace-only text yields an
// empty, non-nil result.
func Extract(classification, text string) (segment.ExtractionResult, bool) {
	e, ok := ForClassification(classification, text)
	if !ok {
		return nil, false
	}
	return e.Extract(), true
}
