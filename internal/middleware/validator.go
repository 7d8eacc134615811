package middleware

import (
	"fmt"
	"net/url"
	"strings"
)

// Input validation and sanitization utilities

// ValidateMode checks if the recognition mode is in the allowed list
func ValidateMode(mode string) error {
	allowed := map[string]bool{
		"auto": true,
		"area": true,
		"line": true,
	}

	if !allowed[strings.ToLower(mode)] {
		return fmt.Errorf("invalid mode: %s (allowed: auto, area, line)", mode)
	}
	return nil
}

// ValidateView checks if the view name is in the allowed list
func ValidateView(view string) error {
	if view != "scan" && view != "history" {
		return fmt.Errorf("invalid view: %s (allowed: scan, history)", view)
	}
	return nil
}

// ValidateLimit bounds list limits to something sane
func ValidateLimit(limit int) error {
	if limit < 0 || limit > 500 {
		return fmt.Errorf("invalid limit: %d (allowed: 0-500)", limit)
	}
	return nil
}

// ValidateStreamURL validates the capture stream URL
func ValidateStreamURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("stream URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid stream URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid stream URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("stream URL missing host")
	}
	return nil
}
