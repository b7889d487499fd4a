package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/ledongthuc/pdf"
)

func extractPages(path, ext string) ([]string, error) {
	switch ext {
	case ".pdf":
		return extractPDFPages(path)
	case ".html", ".htm":
		return extractHTMLPages(path)
	default:
		return extractPlainPages(path)
	}
}

func extractPDFPages(path string) ([]string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var pages []string
	for number := 1; number <= reader.NumPage(); number++ {
		page := reader.Page(number)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", number, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// HTML renders to a single page of plain text.
func extractHTMLPages(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := html2text.FromString(string(raw), html2text.Options{TextOnly: true})
	if err != nil {
		return nil, fmt.Errorf("extract html: %w", err)
	}

	return []string{text}, nil
}

// Plain text splits into pages on form feeds, the page-break convention of
// text dumps. A file without form feeds is a single page.
func extractPlainPages(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, page := range strings.Split(string(raw), "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pages = append(pages, page)
	}

	return pages, nil
}
