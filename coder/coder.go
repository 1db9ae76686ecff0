// Package coder turns stored articles into coded rows with an
// OpenAI-compatible multimodal model and writes them as CSV.
package coder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/newsgrab/extract"
	"github.com/use-agent/newsgrab/models"
	"github.com/use-agent/newsgrab/store"
)

// Model codes one article.
type Model interface {
	Code(ctx context.Context, prompt, article string, image []byte) (Fields, *models.LLMUsage, error)
}

// Lister yields the stored articles to code.
type Lister interface {
	List() ([]*store.StoredArticle, error)
}

// Runner codes every stored article with one prompt.
type Runner struct {
	model  Model
	prompt string
	conv   *converter.Converter
}

// NewRunner creates a Runner. An empty prompt uses DefaultPrompt.
func NewRunner(model Model, prompt string) *Runner {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Runner{model: model, prompt: prompt, conv: extract.NewMarkdownConverter()}
}

// Run codes every article from src in order. Each row starts with title,
// url and date, followed by the model's fields; a model field with the
// same key overrides the value in place.
//
// A failed article is logged and skipped. Authentication failures and
// context cancellation stop the run and return the rows coded so far.
func (r *Runner) Run(ctx context.Context, src Lister) ([]Fields, *models.LLMUsage, error) {
	articles, err := src.List()
	if err != nil {
		return nil, nil, models.NewCaptureError(models.ErrCodeStorage, "failed to list stored articles", err)
	}

	usage := &models.LLMUsage{}
	rows := make([]Fields, 0, len(articles))
	var failures []error

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return rows, usage, err
		}

		body := r.articleText(a)
		slog.Info("coding article",
			"title", a.Name,
			"estimatedTokens", extract.EstimateTokens(body),
			"image", len(a.Image) > 0,
		)

		fields, u, err := r.model.Code(ctx, r.prompt, body, a.Image)
		if err != nil {
			if models.IsCode(err, models.ErrCodeLLMAuthFailure) || ctx.Err() != nil {
				return rows, usage, err
			}
			slog.Warn("article coding failed", "title", a.Name, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", a.Name, err))
			continue
		}
		usage.Add(u)

		row := Fields{
			{Key: "title", Value: a.Name},
			{Key: "url", Value: a.SourceURL},
			{Key: "date", Value: a.Date},
		}
		for _, f := range fields {
			row.Set(f.Key, f.Value)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(failures) > 0 {
		return rows, usage, errors.Join(failures...)
	}
	return rows, usage, nil
}

// articleText converts stored markup to Markdown, falling back to the raw
// markup when conversion fails.
func (r *Runner) articleText(a *store.StoredArticle) string {
	domain := ""
	if u, err := url.Parse(a.SourceURL); err == nil && u.Host != "" {
		domain = u.Scheme + "://" + u.Host
	}
	md, err := extract.ToMarkdown(r.conv, a.Markup, domain)
	if err != nil || md == "" {
		slog.Debug("markdown conversion failed, sending markup", "title", a.Name, "error", err)
		return a.Markup
	}
	return md
}
