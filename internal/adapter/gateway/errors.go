package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const MsgCannotReachServer = "Cannot reach server"

// payloadMessageKeys are checked in order when pulling a human readable
// message out of an error body.
var payloadMessageKeys = []string{"detail", "message", "error", "non_field_errors"}

// APIError is returned for every failed gateway call. NoResponse
// distinguishes network failures and timeouts from an error status sent by
// the server. Status is also set when the status line arrived but the body
// was cut off.
type APIError struct {
	Backend    string
	Method     string
	Path       string
	Status     int
	Payload    json.RawMessage
	NoResponse bool
	Err        error
}

func (e *APIError) Error() string {
	if e.NoResponse {
		return fmt.Sprintf("%s %s %s: no response: %v", e.Backend, e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s %s: status %d: %s", e.Backend, e.Method, e.Path, e.Status, e.Message())
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Message is what a UI should show.
func (e *APIError) Message() string {
	if e.NoResponse {
		return MsgCannotReachServer
	}
	if msg, ok := e.ServerMessage(); ok {
		return msg
	}
	return fmt.Sprintf("Server error: %d", e.Status)
}

// ServerMessage extracts a message from the payload only, reporting false
// when the server sent nothing usable.
func (e *APIError) ServerMessage() (string, bool) {
	if e.NoResponse || len(e.Payload) == 0 {
		return "", false
	}
	return extractMessage(e.Payload)
}

func extractMessage(payload json.RawMessage) (string, bool) {
	var asString string
	if err := json.Unmarshal(payload, &asString); err == nil {
		return asString, asString != ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || len(fields) == 0 {
		return "", false
	}

	for _, key := range payloadMessageKeys {
		if raw, ok := fields[key]; ok {
			if msg := flatten(raw); msg != "" {
				return msg, true
			}
		}
	}

	// Field validation errors, e.g. {"username": ["already taken"]}.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if msg := flatten(fields[k]); msg != "" {
			parts = append(parts, k+": "+msg)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}

func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNoResponse(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.NoResponse
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
