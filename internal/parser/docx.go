package parser

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph styles give the font size and
// pages are estimated from text volume, since the file carries no layout.
type DOCXParser struct {
	CharsPerPage int
}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]outline.TextBlock, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docoutline-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paras []docxPara
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paras = append(paras, docxPara{style: docxStyle(para), text: docxParagraphText(para)})
	}
	return paginateParagraphs(paras, p.CharsPerPage), nil
}

type docxPara struct {
	style string
	text  string
}

// paginateParagraphs assigns each paragraph the page its first character
// would fall on if every page held charsPerPage characters.
func paginateParagraphs(paras []docxPara, charsPerPage int) []outline.TextBlock {
	if charsPerPage <= 0 {
		charsPerPage = 3000
	}
	blocks := []outline.TextBlock{}
	chars := 0
	for _, para := range paras {
		if para.text == "" {
			continue
		}
		blocks = append(blocks, outline.TextBlock{
			Text:     para.text,
			Page:     1 + chars/charsPerPage,
			FontSize: styleSize(para.style),
		})
		chars += utf8.RuneCountInString(para.text)
	}
	return blocks
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// styleSize maps Word's built-in style ids ("Heading1", "heading 1", "Title")
// to synthetic sizes.
func styleSize(style string) float64 {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch s {
	case "title":
		return titleSize
	case "subtitle":
		return headingSize(2)
	}
	if strings.HasPrefix(s, "heading") && len(s) == len("heading")+1 {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return headingSize(int(d - '0'))
		}
	}
	return bodySize
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
