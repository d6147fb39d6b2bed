package provider

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx response from the provider or the route layer.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, status, msg)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, status)
}

// TransportError means the request never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the response body was not the expected JSON envelope.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
