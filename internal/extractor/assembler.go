package extractor

import (
	"strings"

	"github.com/lexmx/articulado/internal/segment"
)

// headingTrim is the glued punctuation stripped from anchor text to form a
// title: "ARTÍCULO 1.-" titles as "ARTÍCULO 1".
const headingTrim = " .-"

// assemble pairs each anchor with the text running to the next anchor and
// assigns the document-linear order. One flat walk: a chapter heading does
// not reset article numbering, and empty bodies are retained. Text before
// the first anchor is dropped unless the rule set keeps preambles.
func (rs *RuleSet) assemble(text string, anchors []anchor) segment.ExtractionResult {
	result := make(segment.ExtractionResult, 0, len(anchors)+1)
	order := 1

	preambleEnd := len(text)
	if len(anchors) > 0 {
		preambleEnd = anchors[0].start
	}
	if rs.KeepPreamble {
		if pre := strings.TrimSpace(text[:preambleEnd]); pre != "" {
			result = append(result, segment.Segment{
				Kind:  segment.KindPreamble,
				Title: TitlePreamble,
				Body:  pre,
				Order: order,
			})
			order++
		}
	}

	for i, a := range anchors {
		end := len(text)
		if i+1 < len(anchors) {
			end = anchors[i+1].start
		}
		result = append(result, segment.Segment{
			Kind:  a.kind,
			Title: strings.TrimRight(text[a.start:a.end], headingTrim),
			Body:  strings.TrimSpace(text[a.end:end]),
			Order: order,
		})
		order++
	}
	return result
}
