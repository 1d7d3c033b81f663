package httpmetrics

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizePath collapses identifier segments of a path no router matched,
// so stray ids cannot blow up label cardinality. Post ids and token ids
// both become {id}, matching the route templates.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isIdentifier(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if _, err := uuid.Parse(s); err == nil && len(s) == 36 {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
