// Package httpclient provides the bounded-timeout HTTP client Sender and
// Getter use to talk to worker nodes. Each call is independent (no
// persistent connection to retry, unlike the teacher's gRPC reconnection
// manager) so a simple per-call timeout is sufficient.
package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single outbound call from Sender or Getter.
const DefaultTimeout = 10 * time.Second

// New builds an *http.Client with a bounded per-request timeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
