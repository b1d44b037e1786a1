package outline

import "sort"

// FontRanks maps distinct font sizes to heading levels. It is built once per
// document and never mutated afterwards.
type FontRanks struct {
	levels map[float64]HeadingLevel
	sizes  []float64
}

// BuildFontRanks ranks the distinct font sizes of blocks, largest first.
// Four or more sizes map the top four to H1..H4, exactly three map to
// H1..H3, and fewer than three give an empty mapping.
func BuildFontRanks(blocks []TextBlock) FontRanks {
	distinct := make(map[float64]struct{})
	for _, b := range blocks {
		distinct[b.FontSize] = struct{}{}
	}
	sizes := make([]float64, 0, len(distinct))
	for s := range distinct {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	var n int
	switch {
	case len(sizes) >= 4:
		n = 4
	case len(sizes) == 3:
		n = 3
	default:
		n = 0
	}

	r := FontRanks{levels: make(map[float64]HeadingLevel, n), sizes: sizes[:n:n]}
	for i, s := range r.sizes {
		r.levels[s] = H1 + HeadingLevel(i)
	}
	return r
}

// Level returns the heading level for size, if the size is ranked.
func (r FontRanks) Level(size float64) (HeadingLevel, bool) {
	lvl, ok := r.levels[size]
	return lvl, ok
}

// Len is the number of ranked sizes (0, 3 or 4).
func (r FontRanks) Len() int {
	return len(r.sizes)
}

// Sizes returns the ranked sizes, largest first.
func (r FontRanks) Sizes() []float64 {
	out := make([]float64, len(r.sizes))
	copy(out, r.sizes)
	return out
}
