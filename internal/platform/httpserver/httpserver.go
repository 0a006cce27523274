// Package httpserver configures the process's single HTTP listener.
package httpserver

import (
	"net/http"
	"time"
)

// New wraps handler in a server with bounded timeouts. Privilege endpoints
// never stream; a request that holds a connection past these limits is a
// stuck client, not a legitimate caller.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
