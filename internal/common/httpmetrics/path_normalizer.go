package httpmetrics

import "strings"

var knownPaths = map[string]struct{}{
	"/":              {},
	"/health":        {},
	"/metrics":       {},
	"/auth/register": {},
	"/auth/login":    {},
	"/auth/me":       {},
}

// NormalizePath bounds label cardinality: unknown paths collapse to "other".
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	if _, ok := knownPaths[path]; ok {
		return path
	}

	return "other"
}
