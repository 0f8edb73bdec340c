package common

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// DefaultDevServerSecret is the placeholder signing secret shipped in the
// default configuration. It is never used to sign tokens.
const DefaultDevServerSecret = "changeme"

// GenerateSecureRandomString generates a cryptographically secure random string of the specified length
func GenerateSecureRandomString(length int) (string, error) {
	// base64 expands by ~4/3
	byteLength := (length*3 + 3) / 4

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	encoded := base64.URLEncoding.EncodeToString(bytes)
	return encoded[:length], nil
}

// EnsureSecret returns value unless it is blank or the shipped placeholder,
// in which case a fresh random secret is generated. The boolean reports
// whether a secret was generated.
func EnsureSecret(value string, length int) (string, bool, error) {
	if !IsBlank(value) && !strings.EqualFold(value, DefaultDevServerSecret) {
		return value, false, nil
	}
	generated, err := GenerateSecureRandomString(length)
	if err != nil {
		return "", false, err
	}
	return generated, true, nil
}
