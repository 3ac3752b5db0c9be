package server

import "time"

const (
	readTimeout = 10 * time.Second
	idleTimeout = 60 * time.Second

	// Batch runs stream through the request handler, so writes can take as
	// long as a full roster pass.
	writeTimeout = 10 * time.Minute
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
