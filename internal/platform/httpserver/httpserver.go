// Package httpserver builds the admin API's net/http server.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New returns a server for handler on addr. The write timeout leaves room
// for the router's own 30s admin deadline to answer first.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       idleTimeout,
	}
}
