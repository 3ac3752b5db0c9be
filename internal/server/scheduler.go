package server

import (
	"context"

	"dupr-sync-service/internal/scheduler"
)

// Scheduler defines the minimal scheduler behavior needed by the server.
type Scheduler interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() scheduler.Status
}
