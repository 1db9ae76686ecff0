package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/coder"
	"github.com/use-agent/newsgrab/config"
	"github.com/use-agent/newsgrab/extract"
	"github.com/use-agent/newsgrab/scraper"
	"github.com/use-agent/newsgrab/store"
)

// newStore builds the article store from config.
func newStore(cfg *config.Config) (*store.Store, error) {
	policy, err := store.ParsePolicy(cfg.Store.TitlePolicy)
	if err != nil {
		return nil, err
	}
	return store.New(cfg.Store.OutputDir, policy), nil
}

// captureOptions maps config onto fetch options.
func captureOptions(cfg config.CaptureConfig) (capture.Options, error) {
	if err := extract.ValidateSelectors(cfg.ContentSelector, cfg.TitleSelector, cfg.DateSelector); err != nil {
		return capture.Options{}, err
	}
	opts := capture.DefaultOptions()
	opts.ContentSelector = cfg.ContentSelector
	opts.Selectors = extract.Selectors{Title: cfg.TitleSelector, Date: cfg.DateSelector}
	opts.Target.Marker = cfg.PhotoMarker
	opts.ContentWaitTimeout = cfg.ContentWaitTimeout
	opts.SettleDelay = cfg.SettleDelay
	opts.ImageWaitTimeout = cfg.ImageWaitTimeout
	return opts, nil
}

// loadCookies reads and parses the cookie file. A missing or empty file is
// not fatal: the capture runs unauthenticated and the site decides.
func loadCookies(path string) []capture.AuthCookie {
	raw, err := capture.ReadCookieFile(path)
	if err != nil {
		slog.Warn("cookie file unreadable, continuing without cookies", "path", path, "error", err)
		return nil
	}
	cookies := capture.ParseCookieHeader(raw)
	if len(cookies) == 0 {
		slog.Warn("cookie file holds no cookies", "path", path)
	}
	return cookies
}

// app holds the capture pipeline and the browser backing it.
type app struct {
	browser  *scraper.Scraper
	store    *store.Store
	capturer *capture.Capturer
}

// newApp launches (or attaches to) the browser and wires the pipeline.
func newApp(cfg *config.Config) (*app, error) {
	st, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := captureOptions(cfg.Capture)
	if err != nil {
		return nil, err
	}
	cookies := loadCookies(cfg.Input.CookieFile)

	sc, err := scraper.NewScraper(cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}

	fetcher := capture.NewFetcher(sc, cookies, opts)
	return &app{browser: sc, store: st, capturer: capture.NewCapturer(fetcher, st)}, nil
}

func (a *app) Close() {
	a.browser.Close()
}

// modelFactory builds coding clients from config, honoring a model override.
func modelFactory(cfg config.LLMConfig) func(model string) coder.Model {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return func(model string) coder.Model {
		if model == "" {
			model = cfg.Model
		}
		return coder.NewClient(httpClient, coder.Params{
			APIKey:  cfg.APIKey,
			Model:   model,
			BaseURL: cfg.BaseURL,
		})
	}
}
