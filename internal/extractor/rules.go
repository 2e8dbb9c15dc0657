package extractor

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/lexmx/articulado/internal/segment"
)

// Canonical heading keywords. The normalizer rewrites every tolerated
// variant (spaced-out letters, lost accents, capitalised case) to these.
const (
	KeywordChapter    = "CAPÍTULO"
	KeywordSection    = "SECCIÓN"
	KeywordArticle    = "ARTÍCULO"
	KeywordTransitory = "TRANSITORIOS"

	// TitlePreamble is the synthetic title of a retained preamble segment.
	TitlePreamble = "PREÁMBULO"
)

// Options tune a rule set beyond its class defaults.
type Options struct {
	MatchLowercase bool // canonicalise all-lowercase keyword forms too
	KeepPreamble   bool // emit text before the first heading as a preamble segment
}

// keywordRule restores one heading keyword to its canonical form.
type keywordRule struct {
	pattern   *regexp.Regexp
	canonical string
}

// RuleSet is the immutable extraction configuration for one document class.
// All patterns are compiled once, at construction; a RuleSet is safe for
// concurrent use.
type RuleSet struct {
	Classification string
	MatchLowercase bool
	KeepPreamble   bool

	keywords []keywordRule  // normalizer rewrites, applied in order
	anchors  *regexp.Regexp // combined heading alternation, one named group per kind
	kinds    []segment.Kind // kind per anchor submatch group, index-aligned
}

// Anchor token fragments. Numeric tokens tolerate a glued ordinal indicator
// ("5º", "2o"); the trailer consumes heading punctuation glued to the token
// ("ARTÍCULO 1." / "ARTÍCULO 1.-") but never a space-separated dot.
const (
	numToken  = `\d+[ºª°oa]?`
	wordToken = `\p{L}+`
	trailer   = `(?:\.-|\.)?`
)

// Spelled-out ordinal tokens. Compound forms precede their prefixes so the
// alternation prefers "DÉCIMO SEGUNDO" over the bare "DÉCIMO".
const (
	ordinalM = `(?i:(?:décimo|vigésimo|trigésimo)(?: (?:primero|segundo|tercero|cuarto|quinto|sexto|séptimo|octavo|noveno))?|primero|segundo|tercero|cuarto|quinto|sexto|séptimo|octavo|noveno|undécimo|duodécimo|único)\b`
	ordinalF = `(?i:(?:décima|vigésima|trigésima)(?: (?:primera|segunda|tercera|cuarta|quinta|sexta|séptima|octava|novena))?|primera|segunda|tercera|cuarta|quinta|sexta|séptima|octava|novena|undécima|duodécima|única)\b`

	// Article number suffixes attach to the title verbatim: "ARTÍCULO 12 Bis".
	articleSuffix = `(?: (?i:bis|ter|quáter|quater|quinquies|sexies|septies|octies|nonies)\b)?`
)

var (
	mu       sync.RWMutex
	registry = map[string]*RuleSet{}
)

func init() {
	Register(NewLeyRules(Options{}))
	Register(NewReglamentoRules(Options{}))
}

// Register installs a rule set, replacing any prior set for its
// classification. Adding a document class is registration plus data; the
// pipeline stages never change.
func Register(rs *RuleSet) {
	mu.Lock()
	defer mu.Unlock()
	registry[rs.Classification] = rs
}

// rulesFor returns the rule set registered for a classification.
func rulesFor(classification string) (*RuleSet, bool) {
	mu.RLock()
	defer mu.RUnlock()
	rs, ok := registry[classification]
	return rs, ok
}

// IsRegistered reports whether a classification has a rule set.
func IsRegistered(classification string) bool {
	_, ok := rulesFor(classification)
	return ok
}

// Classifications lists the registered classification tags, sorted.
func Classifications() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// NewLeyRules returns the baseline rule set for statutes (Ley). Chapters
// take roman, arabic, or word tokens; sections take arabic numerals;
// articles take arabic numerals with an optional Bis/Ter suffix, or a
// spelled-out ordinal as used by transitory provisions.
func NewLeyRules(opts Options) *RuleSet {
	return newRuleSet("Ley", opts,
		`\b`+KeywordChapter+` (?:`+numToken+`|`+wordToken+`)`+trailer,
		`\b`+KeywordSection+` `+numToken+trailer,
		`\b`+KeywordArticle+` (?:`+numToken+articleSuffix+`|`+ordinalM+`)`+trailer,
		`\b`+KeywordTransitory+`\b`+trailer,
	)
}

// NewReglamentoRules returns the rule set for regulations (Reglamento),
// which additionally title sections with spelled-out feminine ordinals
// ("SECCIÓN PRIMERA").
func NewReglamentoRules(opts Options) *RuleSet {
	return newRuleSet("Reglamento", opts,
		`\b`+KeywordChapter+` (?:`+numToken+`|`+wordToken+`)`+trailer,
		`\b`+KeywordSection+` (?:`+numToken+`|`+ordinalF+`)`+trailer,
		`\b`+KeywordArticle+` (?:`+numToken+articleSuffix+`|`+ordinalM+`)`+trailer,
		`\b`+KeywordTransitory+`\b`+trailer,
	)
}

func newRuleSet(classification string, opts Options, chapter, section, article, transitory string) *RuleSet {
	rs := &RuleSet{
		Classification: classification,
		MatchLowercase: opts.MatchLowercase,
		KeepPreamble:   opts.KeepPreamble,
		keywords: []keywordRule{
			{spacedKeyword("c", "a", "p", "[ií]", "t", "u", "l", "o"), KeywordChapter},
			{spacedKeyword("s", "e", "c", "c", "i", "[óo]", "n"), KeywordSection},
			{spacedKeyword("a", "r", "t", "[ií]", "c", "u", "l", "o"), KeywordArticle},
			{spacedKeyword("t", "r", "a", "n", "s", "i", "t", "o", "r", "i", "o", "s"), KeywordTransitory},
		},
	}
	rs.anchors, rs.kinds = compileAnchors(chapter, section, article, transitory)
	return rs
}

// spacedKeyword compiles the tolerant form of a keyword: case-folded, with
// optional whitespace or leader dots between letters. Case policy is
// enforced at replacement time, not here.
func spacedKeyword(letters ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + strings.Join(letters, `[\s.]*`) + `\b`)
}

// compileAnchors builds the combined heading pattern. Alternation order is
// the recognition precedence: chapter, section, article, transitory.
func compileAnchors(chapter, section, article, transitory string) (*regexp.Regexp, []segment.Kind) {
	re := regexp.MustCompile(
		`(?P<chapter>` + chapter + `)` +
			`|(?P<section>` + section + `)` +
			`|(?P<article>` + article + `)` +
			`|(?P<transitory>` + transitory + `)`,
	)
	names := re.SubexpNames()
	kinds := make([]segment.Kind, len(names))
	for i, name := range names {
		switch name {
		case "chapter":
			kinds[i] = segment.KindChapter
		case "section":
			kinds[i] = segment.KindSection
		case "article":
			kinds[i] = segment.KindArticle
		case "transitory":
			kinds[i] = segment.KindTransitory
		}
	}
	return re, kinds
}
