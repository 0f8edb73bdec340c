package common

import (
	"net/mail"
	"net/url"
	"strings"
)

// IsValidAPIEndpoint reports whether the value is an absolute http(s) URL.
func IsValidAPIEndpoint(endpoint string) bool {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(endpoint))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return len(parsed.Host) > 0
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) == 0 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>" forms, the portal only wants the bare address
	return addr.Address == email
}

func IsBlank(value string) bool {
	return len(strings.TrimSpace(value)) == 0
}

// HostnameOf returns the host (with port) portion of an endpoint URL. It
// falls back to the raw value when the URL cannot be parsed.
func HostnameOf(endpoint string) string {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || len(parsed.Host) == 0 {
		return endpoint
	}
	return parsed.Host
}
