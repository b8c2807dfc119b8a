package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL trims and validates a URL string, returning a normalized value
// or an error if the URL is empty or invalid.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL is required")
	}
	if _, err := url.Parse(s); err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return s, nil
}

// NormalizeBaseURL validates a backend address and strips any trailing slash
// so endpoint paths can be appended directly.
func NormalizeBaseURL(raw string) (string, error) {
	s, err := ValidateURL(raw)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", s)
	}
	return strings.TrimRight(s, "/"), nil
}
