package capture

import (
	"net/url"
	"strings"
)

// Target decides whether a network response is the embedded photo.
type Target struct {
	// MIMEPrefix must prefix the response MIME type.
	MIMEPrefix string

	// Marker is the URL segment identifying the photo endpoint.
	Marker string
}

// DefaultTarget matches image responses served from a ShowPhoto endpoint.
var DefaultTarget = Target{MIMEPrefix: "image/", Marker: "ShowPhoto"}

// Matches reports whether a response with the given MIME type and URL is
// the photo. The URL path must begin with "/"+Marker, or the full URL must
// contain Marker in any case. The substring check also covers URLs that
// do not parse.
func (t Target) Matches(mimeType, rawURL string) bool {
	if t.Marker == "" || !strings.HasPrefix(strings.ToLower(mimeType), strings.ToLower(t.MIMEPrefix)) {
		return false
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if strings.HasPrefix(path, "/"+t.Marker) {
		return true
	}
	return strings.Contains(strings.ToLower(rawURL), strings.ToLower(t.Marker))
}
