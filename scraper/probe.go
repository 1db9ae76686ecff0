package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	tls2 "github.com/refraction-networking/utls"
	"github.com/use-agent/newsgrab/extract"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxProbeBody caps the page size read by a probe.
const maxProbeBody = 10 * 1024 * 1024

// ProbeResult reports what a plain HTTP request with the session cookie sees.
type ProbeResult struct {
	StatusCode     int
	FinalURL       string
	PageTitle      string
	ContainerFound bool
	Story          *extract.Story
	Excerpt        string
	NeedsBrowser   bool
}

// Prober fetches article pages without a browser, with a Chrome TLS
// fingerprint (utls). It is a quick check that a cookie still
// authenticates; it never captures photos.
type Prober struct {
	proxy     string
	userAgent string
}

// NewProber creates a Prober. proxyURL may be empty, http(s) or socks5.
func NewProber(proxyURL, userAgent string) *Prober {
	if userAgent == "" {
		userAgent = chromeUA
	}
	return &Prober{proxy: proxyURL, userAgent: userAgent}
}

// Probe fetches targetURL with cookieHeader and inspects the content container.
func (p *Prober) Probe(ctx context.Context, targetURL, cookieHeader, containerSelector string, sel extract.Selectors) (*ProbeResult, error) {
	body, resp, err := p.fetch(ctx, targetURL, cookieHeader)
	if err != nil {
		return nil, err
	}

	res := &ProbeResult{
		StatusCode:   resp.StatusCode,
		FinalURL:     resp.Request.URL.String(),
		PageTitle:    extractTitle(body),
		NeedsBrowser: needsBrowser(body),
	}

	container, found, err := extract.ApplyCSSSelector(string(body), containerSelector)
	if err != nil {
		return nil, fmt.Errorf("probe: apply selector: %w", err)
	}
	if found {
		res.ContainerFound = true
		if res.Story, err = extract.ParseStory(container, sel); err != nil {
			return nil, fmt.Errorf("probe: %w", err)
		}
	}

	if article, ok := extract.Readable(string(body), res.FinalURL); ok {
		res.Excerpt = excerpt(article.TextContent, 200)
	}
	return res, nil
}

// fetch GETs targetURL and returns the body decoded to UTF-8. Legacy
// charsets such as Big5 are detected from headers and meta tags.
func (p *Prober) fetch(ctx context.Context, targetURL, cookieHeader string) ([]byte, *http.Response, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, p.proxy)
		},
	}
	if p.proxy != "" {
		proxyURL, err := url.Parse(p.proxy)
		if err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("probe: build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("probe: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("probe: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxProbeBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, fmt.Errorf("probe: detect charset: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("probe: read body: %w", err)
	}
	return body, resp, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls. ALPN is pinned to http/1.1 because net/http cannot speak h2 over a
// custom DialTLSContext connection.
func dialTLSChrome(ctx context.Context, network, addr, proxyURL string) (net.Conn, error) {
	var dialer proxy.ContextDialer = &net.Dialer{}

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err == nil && (u.Scheme == "socks5" || u.Scheme == "socks5h") {
			d, err := proxy.FromURL(u, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("socks5 dialer: %w", err)
			}
			cd, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("socks5 dialer does not support contexts")
			}
			dialer = cd
		}
	}

	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		rawConn.Close()
		return nil, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{ServerName: host}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, err
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// needsBrowser guesses whether the fetched page is a JS shell whose
// content only a browser would see.
func needsBrowser(body []byte) bool {
	bodyText := extractVisibleText(body)
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(string(body))
	if reNoscript.MatchString(lower) {
		return true
	}
	return strings.Count(lower, "<script") > 10 && len(bodyText) < 500
}

// extractTitle extracts the <title> content from raw HTML bytes.
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// extractVisibleText returns the text inside <body>, skipping script,
// style and noscript content.
func extractVisibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken, html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" && tt == html.StartTagToken {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				if tt == html.StartTagToken {
					skipDepth++
				} else if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}

// excerpt returns at most n runes of s with whitespace collapsed.
func excerpt(s string, n int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}
