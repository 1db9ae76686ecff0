package capture

import (
	"context"
	"errors"
	"sync"
)

// fakeSession is a scripted Session. Events are delivered when the
// session navigates to a URL other than the origin.
type fakeSession struct {
	mu sync.Mutex

	origin      string
	content     *Content
	events      []ResponseEvent
	bodies      map[string]*ResponseBody
	bodyErrs    map[string]error
	failCookies map[string]bool
	subErr      error

	cookies     []AuthCookie
	navigations []string
	bodyCalls   []string
	listener    chan ResponseEvent
	stopOnce    sync.Once
	closed      bool
}

func (s *fakeSession) SetCookie(_ context.Context, origin string, c AuthCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCookies[c.Name] {
		return errors.New("cookie rejected")
	}
	s.origin = origin
	s.cookies = append(s.cookies, c)
	return nil
}

func (s *fakeSession) ResponseBody(_ context.Context, requestID string) (*ResponseBody, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodyCalls = append(s.bodyCalls, requestID)
	if err := s.bodyErrs[requestID]; err != nil {
		return nil, err
	}
	body, ok := s.bodies[requestID]
	if !ok {
		return nil, errors.New("no resource with given identifier found")
	}
	return body, nil
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	s.navigations = append(s.navigations, url)
	first := len(s.navigations) == 1
	listener := s.listener
	s.mu.Unlock()

	if first || listener == nil {
		return nil
	}
	for _, e := range s.events {
		listener <- e
	}
	return nil
}

func (s *fakeSession) Responses(context.Context) (<-chan ResponseEvent, func(), error) {
	if s.subErr != nil {
		return nil, nil, s.subErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = make(chan ResponseEvent, len(s.events)+1)
	ch := s.listener
	return ch, func() { s.stopOnce.Do(func() { close(ch) }) }, nil
}

func (s *fakeSession) WaitContent(ctx context.Context, _ string) (*Content, error) {
	if s.content == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.content, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeBrowser struct {
	session *fakeSession
	err     error
}

func (b *fakeBrowser) NewSession(context.Context) (Session, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.session, nil
}
