package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/config"
	"github.com/ysmood/gson"
)

// eventBuffer absorbs bursts of response events while the interceptor is
// busy fetching a body.
const eventBuffer = 128

// session is a capture.Session backed by one rod page inside its own
// incognito browser context.
type session struct {
	page    *rod.Page
	context *rod.Browser

	closeOnce sync.Once
	closeErr  error
}

var _ capture.Session = (*session)(nil)

// prepare installs stealth and header overrides. Both must happen before
// the first navigation to take effect; failures only degrade the session.
func (s *session) prepare(cfg config.BrowserConfig) {
	if cfg.Stealth {
		if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}
	if cfg.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			slog.Warn("user agent override failed", "error", err)
		}
	}
	headers := map[string]string{"Accept-Language": "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7"}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(s.page); err != nil {
		slog.Warn("extra headers not applied", "error", err)
	}
}

// Navigate loads url and returns once the navigation has committed.
func (s *session) Navigate(ctx context.Context, url string) error {
	return s.page.Context(ctx).Navigate(url)
}

// SetCookie scopes c to origin with path "/".
func (s *session) SetCookie(ctx context.Context, origin string, c capture.AuthCookie) error {
	res, err := proto.NetworkSetCookie{
		Name:  c.Name,
		Value: c.Value,
		URL:   origin,
		Path:  "/",
	}.Call(s.page.Context(ctx))
	if err != nil {
		return err
	}
	if res != nil && !res.Success {
		return fmt.Errorf("browser refused cookie %q", c.Name)
	}
	return nil
}

// Responses relays Network.responseReceived events. The subscription is
// live when Responses returns, so call it before the navigation whose
// responses matter.
func (s *session) Responses(ctx context.Context) (<-chan capture.ResponseEvent, func(), error) {
	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return nil, nil, fmt.Errorf("enable network domain: %w", err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	events := make(chan capture.ResponseEvent, eventBuffer)

	wait := s.page.Context(listenCtx).EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Response == nil {
			return
		}
		select {
		case events <- capture.ResponseEvent{
			RequestID: string(e.RequestID),
			URL:       e.Response.URL,
			MIMEType:  e.Response.MIMEType,
		}:
		case <-listenCtx.Done():
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		wait()
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return events, stop, nil
}

// ResponseBody fetches a response body over the debugging channel.
func (s *session) ResponseBody(ctx context.Context, requestID string) (*capture.ResponseBody, error) {
	res, err := proto.NetworkGetResponseBody{
		RequestID: proto.NetworkRequestID(requestID),
	}.Call(s.page.Context(ctx))
	if err != nil {
		return nil, err
	}
	return &capture.ResponseBody{Body: res.Body, Base64Encoded: res.Base64Encoded}, nil
}

// WaitContent polls for selector until it matches or ctx ends, then reads
// the element's outer HTML and rendered text.
func (s *session) WaitContent(ctx context.Context, selector string) (*capture.Content, error) {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, err
	}
	markup, err := el.HTML()
	if err != nil {
		return nil, fmt.Errorf("read container HTML: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return nil, fmt.Errorf("read container text: %w", err)
	}
	return &capture.Content{Markup: markup, Text: text}, nil
}

// Close closes the tab and disposes its incognito context. The page and
// context references carry no request deadline, so cleanup works even
// after the capture context has expired.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		pageErr := s.page.Close()
		ctxErr := s.context.Close()
		s.closeErr = errors.Join(pageErr, ctxErr)
	})
	return s.closeErr
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
