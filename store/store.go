// Package store persists captured articles as one directory per title:
//
//	<root>/<title>/<title>.html
//	<root>/<title>/url.txt
//	<root>/<title>/date.txt
//	<root>/<title>/<title>.jpg   (only when a photo was captured)
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/use-agent/newsgrab/models"
)

const (
	urlFile  = "url.txt"
	dateFile = "date.txt"
)

// Store writes and reads the article layout under Root.
type Store struct {
	Root   string
	Policy TitlePolicy
}

// New creates a Store rooted at root.
func New(root string, policy TitlePolicy) *Store {
	return &Store{Root: root, Policy: policy}
}

// Save writes rec and returns its directory. The writes are independent:
// a failed one does not stop the others, and all failures are returned
// together. Titles are not required to be unique; a repeated title
// overwrites the earlier article.
func (s *Store) Save(rec *models.ArticleRecord) (string, error) {
	name, err := DirName(rec.Title, s.Policy)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.Root, name)
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	files := []struct {
		name string
		data []byte
	}{
		{name + ".html", []byte(rec.Markup)},
		{urlFile, []byte(rec.SourceURL)},
		{dateFile, []byte(rec.PublishedDate)},
	}
	if rec.HasImage() {
		files = append(files, struct {
			name string
			data []byte
		}{name + ".jpg", rec.Image})
	}

	var errs []error
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			slog.Error("article file write failed", "dir", dir, "file", f.name, "error", err)
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return dir, models.NewCaptureError(models.ErrCodeStorage, "failed to write article files", err)
	}
	return dir, nil
}

// ensureDir creates path recursively. An existing non-directory at path
// is a storage conflict.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return models.NewCaptureError(models.ErrCodeStorageConflict,
				fmt.Sprintf("%q exists and is not a directory", path), nil)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return models.NewCaptureError(models.ErrCodeStorage, "failed to create article directory", err)
		}
		return nil
	default:
		return models.NewCaptureError(models.ErrCodeStorage, "failed to stat article directory", err)
	}
}

// StoredArticle is an article read back from disk.
type StoredArticle struct {
	Name      string // directory name
	Dir       string
	Markup    string
	SourceURL string
	Date      string
	Image     []byte // nil when no photo was stored
}

// Load reads the article stored in directory name.
func (s *Store) Load(name string) (*StoredArticle, error) {
	dir := filepath.Join(s.Root, name)

	markup, err := os.ReadFile(filepath.Join(dir, name+".html"))
	if err != nil {
		return nil, err
	}
	sourceURL, err := os.ReadFile(filepath.Join(dir, urlFile))
	if err != nil {
		return nil, err
	}
	date, err := os.ReadFile(filepath.Join(dir, dateFile))
	if err != nil {
		return nil, err
	}

	a := &StoredArticle{
		Name:      name,
		Dir:       dir,
		Markup:    string(markup),
		SourceURL: string(sourceURL),
		Date:      string(date),
	}
	image, err := os.ReadFile(filepath.Join(dir, name+".jpg"))
	switch {
	case err == nil:
		a.Image = image
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	return a, nil
}

// List loads every complete article under Root in name order. Folders
// missing the html, url or date file are skipped with a warning.
func (s *Store) List() ([]*StoredArticle, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	articles := make([]*StoredArticle, 0, len(names))
	for _, name := range names {
		a, err := s.Load(name)
		if err != nil {
			slog.Warn("skipping incomplete article folder", "name", name, "error", err)
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
