package models

// ArticleRecord is everything captured for one article page.
type ArticleRecord struct {
	// Title comes from the heading inside the content container and
	// doubles as the output directory name.
	Title string `json:"title"`

	// Markup is the serialized content container (outer HTML).
	Markup string `json:"-"`

	// PlainText is the rendered text of the container. It is handed to
	// downstream analysis and never written to disk.
	PlainText string `json:"-"`

	SourceURL     string `json:"source_url"`
	PublishedDate string `json:"published_date"`

	// Image is nil when no matching photo response arrived in time.
	Image []byte `json:"-"`
}

// HasImage reports whether a photo was captured.
func (r *ArticleRecord) HasImage() bool {
	return r != nil && len(r.Image) > 0
}

// ArticleSummary is the API view of a stored article.
type ArticleSummary struct {
	Title         string `json:"title"`
	SourceURL     string `json:"source_url"`
	PublishedDate string `json:"published_date"`
	Directory     string `json:"directory"`
	HasImage      bool   `json:"has_image"`
	ImageBytes    int    `json:"image_bytes,omitempty"`
	TextLength    int    `json:"text_length"`
}

// Summarize builds the API view of rec stored under dir.
func Summarize(rec *ArticleRecord, dir string) *ArticleSummary {
	return &ArticleSummary{
		Title:         rec.Title,
		SourceURL:     rec.SourceURL,
		PublishedDate: rec.PublishedDate,
		Directory:     dir,
		HasImage:      rec.HasImage(),
		ImageBytes:    len(rec.Image),
		TextLength:    len([]rune(rec.PlainText)),
	}
}
