package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings get
// synthetic sizes by level and a thematic break starts a new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	w := &mdWalker{src: src, page: 1, blocks: []outline.TextBlock{}}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
	return w.blocks, nil
}

type mdWalker struct {
	src    []byte
	page   int
	blocks []outline.TextBlock
}

func (w *mdWalker) emit(s string, size float64) {
	if s = strings.TrimSpace(s); s != "" {
		w.blocks = append(w.blocks, outline.TextBlock{Text: s, Page: w.page, FontSize: size})
	}
}

func (w *mdWalker) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.ThematicBreak:
		w.page++
	case *ast.Heading:
		w.emit(collapse(inlineText(node, w.src)), headingSize(node.Level))
	case *ast.Paragraph, *ast.TextBlock:
		for _, line := range strings.Split(inlineText(node, w.src), "\n") {
			w.emit(line, bodySize)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c)
		}
	}
}

// inlineText concatenates the text of n's inline descendants, with a newline
// at each soft or hard line break.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}
