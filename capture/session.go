// Package capture retrieves one authenticated article page through a
// remote-controlled browser session and races the content wait against a
// passive network listener that picks up the embedded photo.
package capture

import (
	"context"
	"encoding/base64"
	"fmt"
)

// ResponseEvent is the metadata of one network response observed on the
// browser's debugging channel.
type ResponseEvent struct {
	RequestID string
	URL       string
	MIMEType  string
}

// ResponseBody is a response body as returned by the debugging channel.
type ResponseBody struct {
	Body          string
	Base64Encoded bool
}

// Bytes normalizes both body representations to raw bytes.
func (b *ResponseBody) Bytes() ([]byte, error) {
	if !b.Base64Encoded {
		return []byte(b.Body), nil
	}
	data, err := base64.StdEncoding.DecodeString(b.Body)
	if err != nil {
		return nil, fmt.Errorf("decode base64 body: %w", err)
	}
	return data, nil
}

// Content is the located content container.
type Content struct {
	// Markup is the container's outer HTML, embedded image tags included.
	Markup string

	// Text is the container's rendered plain text.
	Text string
}

// CookieSetter applies one cookie to a session, scoped to origin.
type CookieSetter interface {
	SetCookie(ctx context.Context, origin string, c AuthCookie) error
}

// BodyFetcher fetches a response body by request identifier.
type BodyFetcher interface {
	ResponseBody(ctx context.Context, requestID string) (*ResponseBody, error)
}

// Session is one browser tab plus its debugging-channel connection.
// A Session is created per fetch and closed at its end.
type Session interface {
	CookieSetter
	BodyFetcher

	// Navigate loads url in the session's tab.
	Navigate(ctx context.Context, url string) error

	// Responses subscribes to network-response events. Events emitted
	// before the call are lost. The returned stop func detaches the
	// listener and closes the channel; it is safe to call more than once.
	Responses(ctx context.Context) (<-chan ResponseEvent, func(), error)

	// WaitContent blocks until selector matches an element or ctx ends.
	WaitContent(ctx context.Context, selector string) (*Content, error)

	// Close releases the tab and the debugging connection.
	Close() error
}

// Browser opens sessions.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}
