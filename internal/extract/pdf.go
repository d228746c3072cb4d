// Package extract converts PDF files into page-delimited Markdown.
//
// Only the embedded text layer is read; scanned (image-only) PDFs come out
// empty and are skipped by the directory driver. Each page is prefixed with
// a <!-- Page N --> marker so downstream cleaning and chunking can keep
// page attribution.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText holds the extracted text of a single page.
type PageText struct {
	Number int
	Text   string
}

// ExtractPages reads the text layer of every page in the PDF at path.
// Pages that fail to decode are returned with empty text rather than
// aborting the whole document.
func ExtractPages(path string) ([]PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	fonts := make(map[string]*pdf.Font)
	pages := make([]PageText, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, PageText{Number: i})
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			pages = append(pages, PageText{Number: i})
			continue
		}
		pages = append(pages, PageText{Number: i, Text: text})
	}
	return pages, nil
}

// PagesToMarkdown renders extracted pages as Markdown with page markers.
// Lines are trimmed and blank lines are kept only between text blocks.
// The result is empty when no page carried any text.
func PagesToMarkdown(pages []PageText) string {
	parts := make([]string, 0, len(pages)*2)
	sawText := false

	for _, page := range pages {
		parts = append(parts, fmt.Sprintf("<!-- Page %d -->\n", page.Number))
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		sawText = true

		var lines []string
		for _, line := range strings.Split(page.Text, "\n") {
			stripped := strings.TrimSpace(line)
			if stripped != "" {
				lines = append(lines, stripped)
			} else if len(lines) > 0 && lines[len(lines)-1] != "" {
				lines = append(lines, "")
			}
		}
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if !sawText {
		return ""
	}
	return strings.Join(parts, "\n\n")
}

// ConvertFile extracts one PDF into Markdown text.
func ConvertFile(path string) (string, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return "", err
	}
	return PagesToMarkdown(pages), nil
}
