package interfaces

import (
	"context"
	"time"

	"github.com/mailroomhq/mailroom/internal/models"
)

type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) (string, error)
	GetByID(ctx context.Context, id string) (*models.Email, error)
	// GetByUserAndProviderMessageID is the dedup lookup for at-least-once
	// webhook delivery. Returns nil without error when not found.
	GetByUserAndProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error)
	SetRawMimeKey(ctx context.Context, emailID, rawMimeKey string) error
	ListByThread(ctx context.Context, userID, threadID string) ([]*models.Email, error)
	// ListTrashOlderThan returns emails sitting in trash folders whose last
	// update predates the cutoff. Used by the purge job.
	ListTrashOlderThan(ctx context.Context, before time.Time, limit int) ([]*models.Email, error)
	HardDelete(ctx context.Context, emailID string) error
}
