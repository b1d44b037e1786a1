package outline

import "strings"

// collapseSpace replaces every run of whitespace with a single space and
// trims both ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize returns the dedup key for a block's text: whitespace collapsed
// and lowercased.
func Normalize(s string) string {
	return strings.ToLower(collapseSpace(s))
}

func withTrailingSpace(s string) string {
	if strings.HasSuffix(s, " ") {
		return s
	}
	return s + " "
}
