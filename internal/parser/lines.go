package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// glyph is one positioned run of text as reported by a PDF content stream.
// Y grows upwards, as in PDF user space.
type glyph struct {
	text string
	x, y float64
	w    float64
	size float64
}

const (
	spaceGapRatio  = 0.3
	columnGapRatio = 3.0
)

// assembleLines groups glyphs into rows by baseline, orders rows top to
// bottom, and turns each row into one block, or several when a gap wider than
// a column gutter separates its glyphs. A block's font size is the largest
// glyph size in it.
func assembleLines(glyphs []glyph, page int, tolerance float64) []outline.TextBlock {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].y > sorted[j].y
	})

	var rows [][]glyph
	var rowY float64
	for _, g := range sorted {
		if len(rows) == 0 || math.Abs(rowY-g.y) > tolerance {
			rows = append(rows, nil)
			rowY = g.y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	var blocks []outline.TextBlock
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		blocks = append(blocks, splitRow(row, page)...)
	}
	return blocks
}

func splitRow(row []glyph, page int) []outline.TextBlock {
	var (
		blocks []outline.TextBlock
		text   strings.Builder
		size   float64
		prev   *glyph
	)
	flush := func() {
		t := strings.TrimSpace(text.String())
		if t != "" && size > 0 {
			blocks = append(blocks, outline.TextBlock{Text: t, Page: page, FontSize: size})
		}
		text.Reset()
		size = 0
	}

	for i := range row {
		g := &row[i]
		if prev != nil {
			ref := math.Max(prev.size, g.size)
			gap := g.x - (prev.x + prev.w)
			switch {
			case ref > 0 && gap > columnGapRatio*ref:
				flush()
			case ref > 0 && gap > spaceGapRatio*ref && !endsInSpace(text.String()) && !strings.HasPrefix(g.text, " "):
				text.WriteByte(' ')
			}
		}
		text.WriteString(g.text)
		if strings.TrimSpace(g.text) != "" && g.size > size && !math.IsInf(g.size, 0) {
			size = g.size
		}
		prev = g
	}
	flush()
	return blocks
}

func endsInSpace(s string) bool {
	return s == "" || strings.HasSuffix(s, " ")
}
