// Package shared provides common utility functions used across multiple
// packages in the calunga-catalog codebase.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizePackageName lowercases a Python package name and collapses
// each run of dots, underscores, and hyphens into a single hyphen,
// following PEP 503 normalization.
func NormalizePackageName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	return nameSeparators.ReplaceAllString(lower, "-")
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, strings.TrimSpace(body))
}

// UniqueStrings returns values with duplicates removed, preserving the
// first occurrence order.
func UniqueStrings(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
