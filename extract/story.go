package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors locate the fields of a story inside the content container.
type Selectors struct {
	Title string // e.g. "h1"
	Date  string // e.g. ".story-source"
}

// DefaultSelectors matches the story-content layout.
var DefaultSelectors = Selectors{Title: "h1", Date: ".story-source"}

// Story holds the fields parsed from container markup.
type Story struct {
	Title string
	Date  string
}

// ParseStory parses the container markup and returns its heading text and
// publication date, both trimmed. A missing element yields an empty field.
func ParseStory(markup string, sel Selectors) (*Story, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse story markup: %w", err)
	}
	return &Story{
		Title: strings.TrimSpace(doc.Find(sel.Title).First().Text()),
		Date:  strings.TrimSpace(doc.Find(sel.Date).First().Text()),
	}, nil
}

// ImageSources returns the absolute src of every <img> in markup, skipping
// data URIs and duplicates.
func ImageSources(markup string, sourceURL string) []string {
	sources := []string{}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return sources
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return sources
	}

	seen := make(map[string]struct{})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			return
		}

		resolved, err := base.Parse(src)
		if err != nil || resolved.Scheme == "data" {
			return
		}

		absURL := resolved.String()
		if _, ok := seen[absURL]; ok {
			return
		}
		seen[absURL] = struct{}{}
		sources = append(sources, absURL)
	})

	return sources
}
