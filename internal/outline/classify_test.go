package outline

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourSizes gives every test document a full H1..H4 font ranking:
// 20 -> H1, 16 -> H2, 14 -> H3, 12 -> H4, 10 unranked.
var fourSizes = []TextBlock{
	{Text: "x", Page: 1, FontSize: 20},
	{Text: "x", Page: 1, FontSize: 16},
	{Text: "x", Page: 1, FontSize: 14},
	{Text: "x", Page: 1, FontSize: 12},
	{Text: "x", Page: 1, FontSize: 10},
}

func classify(t *testing.T, blocks []TextBlock) []Entry {
	t.Helper()
	res, err := Extract(blocks, Options{})
	require.NoError(t, err)
	return res.Outline
}

// decisions runs the classifier with a JSON debug logger and returns the
// "rule" attribute of every dropped block, in order.
func decisions(t *testing.T, blocks []TextBlock) []string {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewClassifier(BuildFontRanks(blocks), Options{Logger: log})
	c.Classify(blocks)

	var out []string
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		out = append(out, rec["rule"].(string))
	}
	return out
}

func TestClassify_NumberedHeadingLevel(t *testing.T) {
	got := classify(t, []TextBlock{{Text: "2.3 Test Levels", Page: 3, FontSize: 11}})
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Level: H2, Text: "2.3 Test Levels ", Page: 3}, got[0])
}

func TestClassify_NumberingDepthPrecedence(t *testing.T) {
	blocks := []TextBlock{
		{Text: "4. Top Level", Page: 2, FontSize: 10},
		{Text: "4.1 Second Level", Page: 2, FontSize: 10},
		{Text: "4.1.2 Third Level", Page: 2, FontSize: 10},
		{Text: "4.1.2.3 Fourth Level", Page: 2, FontSize: 10},
		{Text: "4.1.2.3.5 Still Fourth", Page: 2, FontSize: 10},
	}
	got := classify(t, blocks)
	require.Len(t, got, 5)
	assert.Equal(t, []HeadingLevel{H1, H2, H3, H4, H4},
		[]HeadingLevel{got[0].Level, got[1].Level, got[2].Level, got[3].Level, got[4].Level})
}

func TestClassify_MergeWithFollower(t *testing.T) {
	blocks := []TextBlock{
		{Text: "3. Overview of the Foundation Level Extension", Page: 5, FontSize: 16},
		{Text: "Syllabus", Page: 5, FontSize: 16},
		{Text: "3.1 Business Outcomes", Page: 5, FontSize: 12},
	}
	got := classify(t, blocks)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{
		Level: H1,
		Text:  "3. Overview of the Foundation Level Extension – Agile TesterSyllabus ",
		Page:  5,
	}, got[0])
	assert.Equal(t, Entry{Level: H2, Text: "3.1 Business Outcomes ", Page: 5}, got[1])
}

func TestClassifier_StepConsumesTwoOnMerge(t *testing.T) {
	blocks := []TextBlock{
		{Text: "3. Overview of the Foundation Level Extension", Page: 5, FontSize: 16},
		{Text: "  SYLLABUS ", Page: 5, FontSize: 16},
	}
	c := NewClassifier(BuildFontRanks(blocks), Options{})
	seen := make(Seen)
	entries, next := c.Step(blocks, 0, seen)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, next)
	assert.True(t, seen.Has("3. overview of the foundation level extension"))
}

func TestClassifier_StepConsumesOneOtherwise(t *testing.T) {
	blocks := []TextBlock{
		{Text: "2.3 Test Levels", Page: 3, FontSize: 11},
		{Text: "Syllabus", Page: 3, FontSize: 11},
	}
	c := NewClassifier(BuildFontRanks(blocks), Options{})
	entries, next := c.Step(blocks, 0, make(Seen))
	require.Len(t, entries, 1)
	assert.Equal(t, 1, next)
}

func TestClassify_MergeNeedsFollower(t *testing.T) {
	blocks := []TextBlock{
		{Text: "3. Overview of the Foundation Level Extension", Page: 5, FontSize: 16},
		{Text: "Syllabus Overview", Page: 5, FontSize: 16},
	}
	got := classify(t, blocks)
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Level: H1, Text: "3. Overview of the Foundation Level Extension ", Page: 5}, got[0])
}

func TestClassify_MergeAtEndOfInput(t *testing.T) {
	got := classify(t, []TextBlock{{Text: "3. Overview of the Foundation Level Extension", Page: 4, FontSize: 16}})
	require.Len(t, got, 1)
	assert.Equal(t, H1, got[0].Level)
	assert.Equal(t, "3. Overview of the Foundation Level Extension ", got[0].Text)
}

func TestClassify_MergedHeadingIsDeduplicated(t *testing.T) {
	blocks := []TextBlock{
		{Text: "3. Overview of the Foundation Level Extension", Page: 5, FontSize: 16},
		{Text: "Syllabus", Page: 5, FontSize: 16},
		{Text: "3. Overview of the  Foundation Level Extension", Page: 9, FontSize: 16},
	}
	got := classify(t, blocks)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Page)
}

func TestClassify_CustomMergeRules(t *testing.T) {
	blocks := []TextBlock{
		{Text: "Appendix A Glossary of", Page: 7, FontSize: 12},
		{Text: "Terms", Page: 7, FontSize: 12},
	}
	opts := Options{MergeRules: []MergeRule{{
		Name:     "glossary",
		Match:    regexp.MustCompile(`^Appendix A Glossary of$`),
		Follower: "terms",
		Text:     "Appendix A Glossary of Terms",
		Level:    H2,
	}}}
	res, err := Extract(blocks, opts)
	require.NoError(t, err)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, Entry{Level: H2, Text: "Appendix A Glossary of Terms ", Page: 7}, res.Outline[0])
}

func TestClassify_EmptyMergeRulesDisableMerging(t *testing.T) {
	blocks := []TextBlock{
		{Text: "3. Overview of the Foundation Level Extension", Page: 5, FontSize: 16},
		{Text: "Syllabus", Page: 5, FontSize: 16},
	}
	res, err := Extract(blocks, Options{MergeRules: []MergeRule{}})
	require.NoError(t, err)
	require.Len(t, res.Outline, 1)
	assert.Equal(t, "3. Overview of the Foundation Level Extension ", res.Outline[0].Text)
}

func TestClassify_FixedPhraseForcesH1(t *testing.T) {
	blocks := append([]TextBlock{}, fourSizes...)
	blocks = append(blocks,
		TextBlock{Text: "Table of Contents", Page: 2, FontSize: 12},
		TextBlock{Text: "Revision  History", Page: 2, FontSize: 10},
	)
	got := classify(t, blocks)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{Level: H1, Text: "Table of Contents ", Page: 2}, got[0])
	assert.Equal(t, Entry{Level: H1, Text: "Revision History ", Page: 2}, got[1])
}

func TestClassify_SingleWordPhraseFilteredBeforeOverride(t *testing.T) {
	blocks := append([]TextBlock{}, fourSizes...)
	blocks = append(blocks, TextBlock{Text: "Acknowledgements", Page: 3, FontSize: 20})
	assert.Empty(t, classify(t, blocks))
	assert.Equal(t, []string{"page-filter", "page-filter", "page-filter", "page-filter", "page-filter", "word-count"},
		decisions(t, blocks))
}

func TestClassify_FontRankFallback(t *testing.T) {
	blocks := append([]TextBlock{}, fourSizes...)
	blocks = append(blocks,
		TextBlock{Text: "Business Outcomes Overview", Page: 2, FontSize: 20},
		TextBlock{Text: "Learning Objectives Here", Page: 2, FontSize: 14},
		TextBlock{Text: "Plain body text line", Page: 2, FontSize: 10},
	)
	got := classify(t, blocks)
	require.Len(t, got, 2)
	assert.Equal(t, H1, got[0].Level)
	assert.Equal(t, H3, got[1].Level)
}

func TestClassify_PageOneNeverEmits(t *testing.T) {
	blocks := []TextBlock{
		{Text: "1. Introduction Chapter", Page: 1, FontSize: 20},
		{Text: "Table of Contents", Page: 1, FontSize: 20},
	}
	assert.Empty(t, classify(t, blocks))
	assert.Equal(t, []string{"page-filter", "page-filter"}, decisions(t, blocks))
}

func TestClassify_SkippedBlocksAreNotSeen(t *testing.T) {
	blocks := []TextBlock{
		{Text: "1. Introduction Chapter", Page: 1, FontSize: 20},
		{Text: "1. Introduction Chapter", Page: 2, FontSize: 20},
		{Text: "1.  INTRODUCTION chapter", Page: 3, FontSize: 20},
	}
	got := classify(t, blocks)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Page)
	assert.Equal(t, []string{"page-filter", "empty-or-seen"}, decisions(t, blocks))
}

func TestClassify_BareNumbersAndYears(t *testing.T) {
	blocks := []TextBlock{
		{Text: "1999", Page: 2, FontSize: 20},
		{Text: "12.", Page: 2, FontSize: 20},
		{Text: "  ", Page: 2, FontSize: 20},
	}
	assert.Empty(t, classify(t, blocks))
	assert.Equal(t, []string{"bare-number", "bare-number", "empty-or-seen"}, decisions(t, blocks))
}

func TestClassify_WordCountBounds(t *testing.T) {
	blocks := []TextBlock{
		{Text: "Introduction", Page: 2, FontSize: 10},
		{Text: "one two three four five six seven eight nine ten eleven twelve thirteen", Page: 2, FontSize: 10},
		{Text: "Two Words", Page: 2, FontSize: 10},
	}
	assert.Equal(t, []string{"word-count", "word-count", "no-level"}, decisions(t, blocks))
}

func TestClassify_LongNumberedBodyLine(t *testing.T) {
	blocks := []TextBlock{
		{Text: "1. Testers should verify that every story has clear criteria", Page: 2, FontSize: 10},
		{Text: "1. Testers verify stories have clear criteria", Page: 2, FontSize: 10},
	}
	got := classify(t, blocks)
	require.Len(t, got, 1)
	assert.Equal(t, "1. Testers verify stories have clear criteria ", got[0].Text)
	assert.Equal(t, []string{"long-numbered"}, decisions(t, blocks))
}

func TestClassify_CollapsesWhitespaceInEmittedText(t *testing.T) {
	got := classify(t, []TextBlock{{Text: "  2.3   Test\tLevels \n", Page: 3, FontSize: 11}})
	require.Len(t, got, 1)
	assert.Equal(t, "2.3 Test Levels ", got[0].Text)
}

func TestClassify_TwoSizesGiveNoFontSignal(t *testing.T) {
	blocks := []TextBlock{
		{Text: "Big Heading Text", Page: 2, FontSize: 18},
		{Text: "small body words", Page: 2, FontSize: 10},
	}
	assert.Empty(t, classify(t, blocks))
}
