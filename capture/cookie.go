package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// AuthCookie is one name/value pair taken from a raw cookie header.
type AuthCookie struct {
	Name  string
	Value string
}

// ParseCookieHeader splits a "k1=v1; k2=v2" header into cookies.
//
// Each segment is split on its first '=' only, so values such as base64
// tokens keep their own '=' characters. Segments without '=' or with an
// empty name are dropped. A repeated name keeps its first position and
// takes the last value.
func ParseCookieHeader(raw string) []AuthCookie {
	var cookies []AuthCookie
	index := make(map[string]int)

	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)

		if i, seen := index[name]; seen {
			cookies[i].Value = value
			continue
		}
		index[name] = len(cookies)
		cookies = append(cookies, AuthCookie{Name: name, Value: value})
	}
	return cookies
}

// ReadCookieFile reads a raw cookie header from path.
func ReadCookieFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cookie file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// InjectCookies applies cookies to the session scoped to origin and
// returns how many were applied. A failed cookie is logged and skipped:
// partial authentication beats aborting the fetch.
func InjectCookies(ctx context.Context, s CookieSetter, origin string, cookies []AuthCookie) int {
	applied := 0
	for _, c := range cookies {
		if err := s.SetCookie(ctx, origin, c); err != nil {
			slog.Warn("cookie injection failed",
				"name", c.Name,
				"origin", origin,
				"error", err,
			)
			continue
		}
		applied++
	}
	slog.Debug("cookies injected", "origin", origin, "applied", applied, "total", len(cookies))
	return applied
}
