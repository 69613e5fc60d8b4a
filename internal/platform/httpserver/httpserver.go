// Package httpserver constructs the process-wide HTTP listener.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server. WriteTimeout stays unset: the security-log channel
// holds WebSocket connections open indefinitely, and per-message deadlines are
// enforced by the stream package instead. Request handlers are bounded by the
// router's timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
