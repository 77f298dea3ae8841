package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/internal/models"
)

type UserRepository interface {
	// GetByEmail returns nil without error when no user owns the address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
