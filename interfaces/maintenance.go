package interfaces

import (
	"context"
	"time"
)

// MaintenanceService hosts scheduled housekeeping. PurgeTrash hard-deletes
// trash-folder emails older than the retention window, including their
// blobs, and returns how many were removed.
type MaintenanceService interface {
	PurgeTrash(ctx context.Context, retention time.Duration, limit int) (int, error)
}
