package ingest

import (
	"fmt"
	"io"
)

// TextReader handles plain text files.
type TextReader struct{}

func (p *TextReader) ReadText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(b), nil
}
