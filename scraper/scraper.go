package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/config"
	"github.com/use-agent/newsgrab/models"
)

// Scraper owns the browser process and opens one isolated session per
// capture. Sessions are not pooled: each fetch gets a fresh incognito
// context so cookies never leak between articles.
type Scraper struct {
	browser  *rod.Browser
	launcher *launcher.Launcher // nil when attached to an external browser
	cfg      config.BrowserConfig
}

var _ capture.Browser = (*Scraper)(nil)

// NewScraper launches a browser, or attaches to cfg.ControlURL when set.
func NewScraper(cfg config.BrowserConfig) (*Scraper, error) {
	if cfg.ControlURL != "" {
		return attach(cfg)
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewCaptureError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{browser: browser, launcher: l, cfg: cfg}, nil
}

// attach connects to a browser started elsewhere, e.g. with
// --remote-debugging-port=9222. Close leaves that browser running.
func attach(cfg config.BrowserConfig) (*Scraper, error) {
	wsURL, err := launcher.ResolveURL(cfg.ControlURL)
	if err != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeBrowserCrash,
			"failed to resolve browser control URL",
			err,
		)
	}

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCaptureError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}
	slog.Info("attached to browser", "controlURL", wsURL)

	return &Scraper{browser: browser, cfg: cfg}, nil
}

// NewSession opens a tab in a fresh incognito context.
func (s *Scraper) NewSession(ctx context.Context) (capture.Session, error) {
	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, err
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, err
	}

	sess := &session{page: page, context: incognito}
	sess.prepare(s.cfg)
	return sess, nil
}

// Close shuts the browser down. Call this on exit to prevent zombie
// Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing browser")
	if s.launcher == nil {
		// Not ours to close: BrowserClose would kill the external process.
		slog.Info("detached from external browser")
		return
	}
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed, killing process", "error", err)
		s.launcher.Kill()
	}
	s.launcher.Cleanup()
	slog.Info("scraper shutdown complete")
}
