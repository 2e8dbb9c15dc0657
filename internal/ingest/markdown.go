package ingest

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown files using goldmark. Headings are kept
// inline in document order: a "# CAPÍTULO I" heading is text the extractor
// must see, not metadata.
type MarkdownReader struct{}

func (p *MarkdownReader) ReadText(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var parts []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if t := blockText(n, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// blockText collects the visible text of one block node. Code blocks keep
// their raw lines; everything else gathers its inline text nodes.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindCodeBlock, ast.KindFencedCodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	default:
		var walk func(ast.Node)
		walk = func(c ast.Node) {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
				return
			}
			for gc := c.FirstChild(); gc != nil; gc = gc.NextSibling() {
				walk(gc)
			}
			// Nested blocks (list items, quoted paragraphs) end their line.
			if c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
		walk(n)
	}
	return strings.TrimSpace(buf.String())
}
