package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The <title> becomes a page-1 block at the
// largest size; <hr> and CSS page breaks advance the page.
type HTMLParser struct{}

var (
	breakBefore = regexp.MustCompile(`(?i)(page-break-before|break-before)\s*:\s*(always|page)`)
	breakAfter  = regexp.MustCompile(`(?i)(page-break-after|break-after)\s*:\s*(always|page)`)
)

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	blocks := []outline.TextBlock{}
	page := 1
	emit := func(s string, size float64) {
		if s = collapse(s); s != "" {
			blocks = append(blocks, outline.TextBlock{Text: s, Page: page, FontSize: size})
		}
	}

	// Extract title from <title> tag if present.
	emit(findTitle(doc), titleSize)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			style := attr(n, "style")
			if breakBefore.MatchString(style) {
				page++
			}
			defer func() {
				if breakAfter.MatchString(style) {
					page++
				}
			}()

			if level := headingLevel(n.Data); level > 0 {
				emit(textContent(n), headingSize(level))
				return
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "noscript", "template", "nav", "head":
				return
			case "hr":
				page++
				return
			case "p", "li", "td", "th", "blockquote", "caption", "figcaption", "dt", "dd":
				emit(textContent(n), bodySize)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return blocks, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
