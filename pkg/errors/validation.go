package errors

import (
	"net/url"
	"strings"
)

// MaxPageSize is the largest page the sources endpoints accept.
const MaxPageSize = 500

// ValidateURL validates a backend base URL.
// It must be absolute, use http or https, and name a host.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "URL must include a host")
	}

	return nil
}

// ValidateID validates a backend resource identifier.
// Identifiers are positive integers; kind names the resource in the message.
func ValidateID(kind string, id int64) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "%s id must be positive, got %d", kind, id)
	}
	return nil
}

// ValidateColumns rejects an explicit column count below zero.
// Zero means "derive from the container width" and is accepted.
func ValidateColumns(columns int) error {
	if columns < 0 {
		return New(ErrCodeInvalidColumns, "columns must not be negative, got %d", columns)
	}
	return nil
}

// ValidatePage validates paging parameters for the sources endpoints.
func ValidatePage(limit, offset int) error {
	if limit < 1 || limit > MaxPageSize {
		return New(ErrCodeInvalidInput, "limit must be between 1 and %d, got %d", MaxPageSize, limit)
	}
	if offset < 0 {
		return New(ErrCodeInvalidInput, "offset must not be negative, got %d", offset)
	}
	return nil
}
