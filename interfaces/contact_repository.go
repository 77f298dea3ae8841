package interfaces

import (
	"context"
	"time"

	"github.com/mailroomhq/mailroom/internal/models"
)

type ContactRepository interface {
	// Reconcile upserts the (userID, email) contact in a single atomic
	// statement, incrementing its counter. Safe under concurrent ingestion
	// of messages from the same sender.
	Reconcile(ctx context.Context, userID, email, fullName string, contactedAt time.Time) (string, error)
	GetByUserAndEmail(ctx context.Context, userID, email string) (*models.Contact, error)
}
