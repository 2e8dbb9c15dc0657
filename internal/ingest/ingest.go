package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Reader extracts the plain-text layer of an uploaded legal document. The
// extractor's normalizer owns whitespace handling, so readers keep text
// verbatim and deal only with format decoding.
type Reader interface {
	ReadText(r io.Reader) (string, error)
}

// Options configure format-specific reader behaviour.
type Options struct {
	PDFFallbackPdftotext bool // shell out to pdftotext when the Go reader fails
}

// SupportedExtensions lists file extensions this service can ingest.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string, opts Options) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
