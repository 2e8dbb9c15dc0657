package extractor

import "github.com/lexmx/articulado/internal/segment"

// anchor is one heading match in normalised text. Anchors carry byte spans
// into the backing string; titles and bodies are sliced, never copied.
type anchor struct {
	kind  segment.Kind
	start int
	end   int
}

// scan locates every heading anchor in normalised text, in document order.
// The named submatch group that fired identifies the heading kind.
func (rs *RuleSet) scan(text string) []anchor {
	matches := rs.anchors.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]anchor, 0, len(matches))
	for _, m := range matches {
		a := anchor{start: m[0], end: m[1]}
		for g := 1; g < len(rs.kinds); g++ {
			if rs.kinds[g] != "" && m[2*g] >= 0 {
				a.kind = rs.kinds[g]
				break
			}
		}
		out = append(out, a)
	}
	return out
}
