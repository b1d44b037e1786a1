package outline

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// UntitledDocument is the title used when no line qualifies.
const UntitledDocument = "Untitled Document"

const (
	maxTitleLines  = 3
	titleSeparator = "  "
)

var (
	latinLetter  = regexp.MustCompile(`[A-Za-z]`)
	titleExclude = regexp.MustCompile(`(?i)(version|copyright|page|\d{4}|revision|table of contents)`)
)

// ExtractTitle picks up to three of the largest non-boilerplate lines from
// pages 1 and 2 and joins them with double spaces.
func ExtractTitle(blocks []TextBlock) string {
	var candidates []TextBlock
	for _, b := range blocks {
		if b.Page == 1 || b.Page == 2 {
			candidates = append(candidates, b)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FontSize > candidates[j].FontSize
	})

	var lines []string
	for _, b := range candidates {
		text := strings.TrimSpace(b.Text)
		if qualifiesAsTitle(text) {
			lines = append(lines, text)
		}
		if len(lines) >= maxTitleLines {
			break
		}
	}

	if len(lines) == 0 {
		return UntitledDocument
	}
	return strings.TrimSpace(strings.Join(lines, titleSeparator)) + titleSeparator
}

func qualifiesAsTitle(text string) bool {
	return utf8.RuneCountInString(text) > 6 &&
		latinLetter.MatchString(text) &&
		!titleExclude.MatchString(text)
}
