package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_TitleAndHeadings(t *testing.T) {
	input := `<html><head><title>  Agile
Tester Handbook </title><style>h1 { color: red }</style></head>
<body>
<h1>Introduction</h1>
<p>Some   intro <b>text</b>.</p>
<h2>2.1 Scope</h2>
<script>var x = "<h3>nope</h3>";</script>
<ul><li>First point</li></ul>
</body></html>`
	p := &HTMLParser{}
	blocks, err := p.Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type want struct {
		text string
		size float64
	}
	wants := []want{
		{"Agile Tester Handbook", titleSize},
		{"Introduction", 24},
		{"Some intro text.", bodySize},
		{"2.1 Scope", 20},
		{"First point", bodySize},
	}
	if len(blocks) != len(wants) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(wants), len(blocks), blocks)
	}
	for i, w := range wants {
		if blocks[i].Text != w.text || blocks[i].FontSize != w.size || blocks[i].Page != 1 {
			t.Errorf("block[%d]: expected %q@%v page 1, got %+v", i, w.text, w.size, blocks[i])
		}
	}
}

func TestHTMLParser_PageBreaks(t *testing.T) {
	input := `<body>
<h1>Cover Page Heading</h1>
<hr>
<h2>Second Page</h2>
<div style="page-break-after: always"><p>Still second</p></div>
<h2>Third Page</h2>
<section style="break-before: page"><h2>Fourth Page</h2></section>
</body>`
	p := &HTMLParser{}
	blocks, err := p.Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPages := []int{1, 2, 2, 3, 4}
	if len(blocks) != len(wantPages) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(wantPages), len(blocks), blocks)
	}
	for i, page := range wantPages {
		if blocks[i].Page != page {
			t.Errorf("block[%d] %q: expected page %d, got %d", i, blocks[i].Text, page, blocks[i].Page)
		}
	}
}
