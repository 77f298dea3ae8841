package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/internal/models"
)

type EmailAttachmentRepository interface {
	Create(ctx context.Context, attachment *models.EmailAttachment) error
	ListByEmail(ctx context.Context, emailID string) ([]*models.EmailAttachment, error)
	DeleteByEmail(ctx context.Context, emailID string) error
}
