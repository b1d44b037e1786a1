package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/outline"
)

// JSONParser reads blocks from a JSON array, or from an object whose
// "blocks" field holds that array.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	return DecodeBlocks(r)
}

type jsonBlock struct {
	Text     *string `json:"text"`
	Page     int     `json:"page"`
	FontSize float64 `json:"font_size"`
}

// DecodeBlocks decodes a block array. A block without a text field is
// reported as an *outline.InvalidBlockError.
func DecodeBlocks(r io.Reader) ([]outline.TextBlock, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err == io.EOF {
		return []outline.TextBlock{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}

	var raw []jsonBlock
	dec := json.NewDecoder(br)
	if first == '{' {
		var wrapper struct {
			Blocks []jsonBlock `json:"blocks"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("decode blocks: %w", err)
		}
		raw = wrapper.Blocks
	} else if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}

	blocks := make([]outline.TextBlock, 0, len(raw))
	for i, b := range raw {
		if b.Text == nil {
			return nil, &outline.InvalidBlockError{Index: i, Reason: "missing text"}
		}
		blocks = append(blocks, outline.TextBlock{Text: *b.Text, Page: b.Page, FontSize: b.FontSize})
	}
	return blocks, nil
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
