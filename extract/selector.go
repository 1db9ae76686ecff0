package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ValidateSelectors checks that every selector compiles.
func ValidateSelectors(selectors ...string) error {
	for _, s := range selectors {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty selector")
		}
		if _, err := cascadia.Parse(s); err != nil {
			return fmt.Errorf("selector %q: %w", s, err)
		}
	}
	return nil
}

// ApplyCSSSelector parses rawHTML and returns the outer HTML of the first
// element matching selector. ok is false when nothing matches.
func ApplyCSSSelector(rawHTML string, selector string) (string, bool, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", false, err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, err
	}

	node := cascadia.Query(doc, sel)
	if node == nil {
		return "", false, nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}
