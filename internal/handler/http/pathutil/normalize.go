// Package pathutil provides URL path helpers shared by handlers and
// middleware: id extraction and metric-label normalization.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization.
var pathPatterns = []*PathPattern{
	// Movie routes with IDs
	{Pattern: regexp.MustCompile(`^/movies/\d+$`), Template: "/movies/:id"},

	// Rental routes keyed by transaction id (UUID)
	{Pattern: regexp.MustCompile(`^/rentals/[0-9a-fA-F-]{36}$`), Template: "/rentals/:transaction_id"},
	{Pattern: regexp.MustCompile(`^/admin/payments/[0-9a-fA-F-]{36}/confirm$`), Template: "/admin/payments/:transaction_id/confirm"},
	{Pattern: regexp.MustCompile(`^/admin/payments/[0-9a-fA-F-]{36}/reject$`), Template: "/admin/payments/:transaction_id/reject"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with ids (e.g., /movies/123) to template format (e.g., /movies/:id).
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/movies/123")      // "/movies/:id"
//	NormalizePath("/movies/search")   // "/movies/search" (unchanged)
//	NormalizePath("/health")          // "/health" (unchanged)
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// Static paths like /health, /metrics and /auth/token pass through.
	return path
}
