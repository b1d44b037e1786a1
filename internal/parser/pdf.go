package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula/layout"
	tabula "github.com/tsawler/tabula/reader"
	rscpdf "rsc.io/pdf"
)

// PDF engine names accepted by PDFParser and the PDF_ENGINE setting.
const (
	EngineLedongthuc = "ledongthuc"
	EngineRSC        = "rsc"
	EngineTabula     = "tabula"
)

// pdfEngine reads the PDF at path and returns its blocks in page order.
type pdfEngine func(path string, rowTolerance float64) ([]outline.TextBlock, error)

var pdfEngines = map[string]pdfEngine{
	EngineLedongthuc: ledongthucBlocks,
	EngineRSC:        rscBlocks,
	EngineTabula:     tabulaBlocks,
}

// IsPDFEngine reports whether name is a known PDF engine.
func IsPDFEngine(name string) bool {
	_, ok := pdfEngines[name]
	return ok
}

// PDFEngines lists the known engine names, sorted.
func PDFEngines() []string {
	names := make([]string, 0, len(pdfEngines))
	for name := range pdfEngines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PDFParser handles PDF files. It runs Engine first, then each of Fallbacks
// in order until one returns blocks.
type PDFParser struct {
	Engine       string
	Fallbacks    []string
	RowTolerance float64
	Logger       *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	// All engines need random access, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	log := p.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	engine := p.Engine
	if engine == "" {
		engine = EngineLedongthuc
	}
	tol := p.RowTolerance
	if tol <= 0 {
		tol = 2.0
	}

	var errs []error
	readable := false
	for _, name := range append([]string{engine}, p.Fallbacks...) {
		run, ok := pdfEngines[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown pdf engine %q", name))
			continue
		}
		blocks, err := runPDFEngine(run, tmpPath, tol)
		if err != nil {
			log.Warn("pdf engine failed", "engine", name, "file", filename, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if len(blocks) > 0 {
			log.Debug("pdf blocks extracted", "engine", name, "file", filename, "blocks", len(blocks))
			return blocks, nil
		}
		readable = true
	}
	if readable {
		return []outline.TextBlock{}, nil
	}
	return nil, fmt.Errorf("extract pdf blocks: %w", errors.Join(errs...))
}

// runPDFEngine converts engine panics on malformed input into errors.
func runPDFEngine(run pdfEngine, path string, tol float64) (blocks []outline.TextBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			blocks, err = nil, fmt.Errorf("engine panic: %v", r)
		}
	}()
	return run(path, tol)
}

func ledongthucBlocks(path string, tol float64) ([]outline.TextBlock, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []outline.TextBlock
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		glyphs := make([]glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, glyph{text: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
		}
		blocks = append(blocks, assembleLines(glyphs, i, tol)...)
	}
	return blocks, nil
}

func rscBlocks(path string, tol float64) ([]outline.TextBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := rscpdf.NewReader(f, info.Size())
	if err != nil {
		return nil, err
	}

	var blocks []outline.TextBlock
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		glyphs := make([]glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, glyph{text: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
		}
		blocks = append(blocks, assembleLines(glyphs, i, tol)...)
	}
	return blocks, nil
}

// tabulaBlocks uses tabula's own line detection, so rowTolerance is unused.
func tabulaBlocks(path string, _ float64) ([]outline.TextBlock, error) {
	r, err := tabula.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	n, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	detector := layout.NewLineDetector()

	var blocks []outline.TextBlock
	for i := 0; i < n; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		frags, err := r.ExtractTextFragments(page)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i+1, err)
		}
		width, err := page.Width()
		if err != nil {
			return nil, fmt.Errorf("page %d width: %w", i+1, err)
		}
		height, err := page.Height()
		if err != nil {
			return nil, fmt.Errorf("page %d height: %w", i+1, err)
		}

		for _, line := range detector.Detect(frags, width, height).Lines {
			text := strings.TrimSpace(line.Text)
			var size float64
			for _, f := range line.Fragments {
				size = math.Max(size, f.FontSize)
			}
			if text == "" || size <= 0 {
				continue
			}
			blocks = append(blocks, outline.TextBlock{Text: text, Page: i + 1, FontSize: size})
		}
	}
	return blocks, nil
}
