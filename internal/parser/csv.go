package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// CSVParser reads block dumps: a header naming text, page and font_size
// columns in any order, then one block per row.
type CSVParser struct{}

var csvColumns = []string{"text", "page", "font_size"}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return []outline.TextBlock{}, nil
	}

	// First row is headers.
	col := make(map[string]int)
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range csvColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("parse csv: missing %q column", name)
		}
	}

	blocks := make([]outline.TextBlock, 0, len(records)-1)
	for i, row := range records[1:] {
		line := i + 2 // 1-indexed, skip header
		field := func(name string) (string, error) {
			idx := col[name]
			if idx >= len(row) {
				return "", fmt.Errorf("parse csv: row %d: missing %s", line, name)
			}
			return row[idx], nil
		}

		text, err := field("text")
		if err != nil {
			return nil, err
		}
		pageStr, err := field("page")
		if err != nil {
			return nil, err
		}
		sizeStr, err := field("font_size")
		if err != nil {
			return nil, err
		}
		page, err := strconv.Atoi(strings.TrimSpace(pageStr))
		if err != nil {
			return nil, fmt.Errorf("parse csv: row %d: page: %w", line, err)
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(sizeStr), 64)
		if err != nil {
			return nil, fmt.Errorf("parse csv: row %d: font_size: %w", line, err)
		}
		blocks = append(blocks, outline.TextBlock{Text: text, Page: page, FontSize: size})
	}
	return blocks, nil
}

// WriteCSV writes blocks in the format CSVParser reads.
func WriteCSV(w io.Writer, blocks []outline.TextBlock) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, b := range blocks {
		rec := []string{
			b.Text,
			strconv.Itoa(b.Page),
			strconv.FormatFloat(b.FontSize, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
