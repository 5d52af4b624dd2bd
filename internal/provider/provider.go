// Package provider wraps the outbound search and image-generation
// services behind small synchronous clients with bounded timeouts.
package provider

import (
	"errors"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when a provider's API key is missing.
// Only the affected endpoint fails; the rest of the service keeps running.
var ErrNotConfigured = errors.New("provider API key is not configured")

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
