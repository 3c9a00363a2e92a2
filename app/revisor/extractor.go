package revisor

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Extractor extracts the readable part of an HTML page.
type Extractor struct{}

// Extracted is a readable content of the page.
type Extracted struct {
	Title    string
	Text     string
	Byline   string
	SiteName string
	Image    string
}

// Extract extracts the readable content from an HTML page.
func (e Extractor) Extract(rd io.Reader, pageURL *url.URL) (Extracted, error) {
	doc, err := readability.FromReader(rd, pageURL)
	if err != nil {
		return Extracted{}, fmt.Errorf("parse html: %w", err)
	}

	return Extracted{
		Title:    doc.Title,
		Text:     sanitize(doc.TextContent),
		Byline:   doc.Byline,
		SiteName: doc.SiteName,
		Image:    doc.Image,
	}, nil
}

var spaces = regexp.MustCompile(`\s+`)

func sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
