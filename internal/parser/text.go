package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// TextParser handles plain text files, typically pdftotext output. A form
// feed starts a new page and every non-blank line is a block of body size.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	blocks := []outline.TextBlock{}
	page := 1
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\f")
		for i, part := range parts {
			if i > 0 {
				page++
			}
			if line := strings.TrimSpace(part); line != "" {
				blocks = append(blocks, outline.TextBlock{Text: line, Page: page, FontSize: bodySize})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}
