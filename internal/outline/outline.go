// Package outline turns an ordered stream of styled text blocks into a
// document title and a flat, ordered list of H1-H4 headings.
//
// The package is pure: it performs no I/O and keeps no state between calls.
// Block sources live in internal/parser; serialization lives in
// internal/pipeline.
package outline

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// TextBlock is a single line-level fragment as produced by a block source.
type TextBlock struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	FontSize float64 `json:"font_size"`
}

// HeadingLevel is the structural rank of a heading. H1 is the most significant.
type HeadingLevel int

const (
	H1 HeadingLevel = iota + 1
	H2
	H3
	H4
)

var levelNames = map[HeadingLevel]string{
	H1: "H1",
	H2: "H2",
	H3: "H3",
	H4: "H4",
}

// Valid reports whether l is one of H1..H4.
func (l HeadingLevel) Valid() bool {
	return l >= H1 && l <= H4
}

func (l HeadingLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("HeadingLevel(%d)", int(l))
}

// MoreSignificantThan reports whether l ranks above other (H1 > H2 > H3 > H4).
func (l HeadingLevel) MoreSignificantThan(other HeadingLevel) bool {
	return l < other
}

func (l HeadingLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid heading level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *HeadingLevel) UnmarshalText(b []byte) error {
	for lvl, name := range levelNames {
		if string(b) == name {
			*l = lvl
			return nil
		}
	}
	return fmt.Errorf("invalid heading level %q", string(b))
}

// Entry is one heading in the outline. Text always ends in exactly one space.
type Entry struct {
	Level HeadingLevel `json:"level"`
	Text  string       `json:"text"`
	Page  int          `json:"page"`
}

// Result is the combined title and outline for one document. Outline is
// never nil when produced by Extract, so it encodes as [] when empty.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// InvalidBlockError reports a block that violates the input contract.
type InvalidBlockError struct {
	Index  int
	Reason string
}

func (e *InvalidBlockError) Error() string {
	return fmt.Sprintf("invalid block %d: %s", e.Index, e.Reason)
}

// Validate checks every block against the input contract and returns the
// first violation.
func Validate(blocks []TextBlock) error {
	for i, b := range blocks {
		if b.Page < 1 {
			return &InvalidBlockError{Index: i, Reason: fmt.Sprintf("page %d < 1", b.Page)}
		}
		if math.IsNaN(b.FontSize) || math.IsInf(b.FontSize, 0) {
			return &InvalidBlockError{Index: i, Reason: "font size is not finite"}
		}
		if b.FontSize <= 0 {
			return &InvalidBlockError{Index: i, Reason: fmt.Sprintf("font size %g is not positive", b.FontSize)}
		}
	}
	return nil
}

// Extract validates blocks and produces the document title and outline.
// Empty input yields the placeholder title and an empty outline.
func Extract(blocks []TextBlock, opts Options) (Result, error) {
	if err := Validate(blocks); err != nil {
		return Result{}, err
	}
	ranks := BuildFontRanks(blocks)
	c := NewClassifier(ranks, opts)
	return Result{
		Title:   ExtractTitle(blocks),
		Outline: c.Classify(blocks),
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
