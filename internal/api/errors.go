package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrorKind classifies failures so callers can pick a message without
// inspecting status codes.
type ErrorKind string

const (
	KindAuthFailed  ErrorKind = "auth_failed"
	KindValidation  ErrorKind = "validation"
	KindUnavailable ErrorKind = "unavailable"
	KindUnexpected  ErrorKind = "unexpected"
)

// Error describes a failed call to the portal API.
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	// Detail is the human readable reason supplied by the API, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "portal api error"
	}
	if len(e.Detail) > 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of an *Error anywhere in the chain, or
// KindUnexpected for anything else.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnexpected
}

// DetailOf returns the API supplied detail, or an empty string.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

func IsAuthFailed(err error) bool {
	return err != nil && KindOf(err) == KindAuthFailed
}

func wrapError(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return err
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// statusClassifier maps a non-2xx status to a kind for one operation.
type statusClassifier func(status int) ErrorKind

func classifyLogin(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailed
	}
	return classifyDefault(status)
}

func classifyRegister(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	}
	return classifyDefault(status)
}

func classifyDefault(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthFailed
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return KindUnavailable
	}
	return KindUnexpected
}

func statusError(op string, resp *resty.Response, classify statusClassifier) *Error {
	status := resp.StatusCode()
	return &Error{
		Op:     op,
		Kind:   classify(status),
		Status: status,
		Detail: parseDetail(resp.Body()),
		Err:    fmt.Errorf("unexpected status %d", status),
	}
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseDetail extracts the "detail" field of an error body. The API sends
// either a plain string or a list of validation issues.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		messages := make([]string, 0, len(issues))
		for _, issue := range issues {
			if msg := strings.TrimSpace(issue.Msg); len(msg) > 0 {
				messages = append(messages, msg)
			}
		}
		return strings.Join(messages, "; ")
	}

	var single validationIssue
	if err := json.Unmarshal(payload.Detail, &single); err == nil {
		return strings.TrimSpace(single.Msg)
	}

	return ""
}
