package server

import (
	"context"
	"net/http"
)

// httpServer is the slice of *http.Server the lifecycle code needs. The
// trigger API and the metrics endpoint both hide behind it, so launchServer
// and gracefulShutdown treat the two listeners uniformly and tests can
// substitute stubs without binding sockets.
type httpServer interface {
	ListenAndServe() error
	Shutdown(context.Context) error
	Addr() string
	Handler() http.Handler
}

// netHTTPServer adapts *http.Server, whose Addr and Handler are fields
// rather than methods.
type netHTTPServer struct {
	srv *http.Server
}

func (s netHTTPServer) ListenAndServe() error              { return s.srv.ListenAndServe() }
func (s netHTTPServer) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
func (s netHTTPServer) Addr() string                       { return s.srv.Addr }
func (s netHTTPServer) Handler() http.Handler              { return s.srv.Handler }
