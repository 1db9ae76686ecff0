package store

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/newsgrab/models"
)

// TitlePolicy decides how a title becomes a directory name.
type TitlePolicy string

const (
	// PolicySanitize replaces unsafe characters.
	PolicySanitize TitlePolicy = "sanitize"

	// PolicyReject refuses titles that would need sanitizing.
	PolicyReject TitlePolicy = "reject"
)

// maxNameBytes keeps "<name>.html" under common 255-byte filename limits.
const maxNameBytes = 150

// ParsePolicy maps a config string to a TitlePolicy.
func ParsePolicy(s string) (TitlePolicy, error) {
	switch TitlePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicySanitize, "":
		return PolicySanitize, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown title policy %q", s)
	}
}

// DirName derives the directory name for title under policy.
func DirName(title string, policy TitlePolicy) (string, error) {
	name := sanitize(title)
	if name == "" || name == "." || name == ".." {
		return "", models.NewCaptureError(models.ErrCodeInvalidTitle,
			fmt.Sprintf("title %q cannot be used as a directory name", title), nil)
	}
	if policy == PolicyReject && name != title {
		return "", models.NewCaptureError(models.ErrCodeInvalidTitle,
			fmt.Sprintf("title %q contains characters not allowed in a directory name", title), nil)
	}
	return name, nil
}

// sanitize replaces path separators, control characters and characters
// reserved on Windows with '_', trims surrounding spaces and dots, and
// truncates on a rune boundary.
func sanitize(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), " .")

	if len(name) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], " .")
	}
	return name
}
