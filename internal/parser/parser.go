package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// ErrUnsupportedFormat is returned by ForFile for extensions no block source
// handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser converts raw document bytes into an ordered stream of text blocks.
type Parser interface {
	Parse(r io.Reader, filename string) ([]outline.TextBlock, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".json":     true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options configures the block sources that have tunables.
type Options struct {
	PDFEngine    string
	PDFFallbacks []string
	RowTolerance float64
	CharsPerPage int
	Logger       *slog.Logger
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		PDFEngine:    EngineLedongthuc,
		PDFFallbacks: []string{EngineTabula, EngineRSC},
		RowTolerance: 2.0,
		CharsPerPage: 3000,
	}
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".json":
		return &JSONParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{
			Engine:       opts.PDFEngine,
			Fallbacks:    opts.PDFFallbacks,
			RowTolerance: opts.RowTolerance,
			Logger:       log,
		}, nil
	case ".docx":
		return &DOCXParser{CharsPerPage: opts.CharsPerPage}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Synthetic point sizes for sources that carry structure instead of
// typography. Only their relative order matters to the font ranking.
const (
	titleSize = 28
	bodySize  = 10
)

var headingSizes = [...]float64{24, 20, 16, 14, 12, 10.5}

// headingSize returns the synthetic size for heading level 1..6.
func headingSize(level int) float64 {
	if level < 1 || level > len(headingSizes) {
		return bodySize
	}
	return headingSizes[level-1]
}

// collapse normalizes whitespace in markup-derived text, where line breaks
// carry no meaning.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
