package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type emailAttachmentRepository struct {
	db *gorm.DB
}

func NewEmailAttachmentRepository(db *gorm.DB) interfaces.EmailAttachmentRepository {
	return &emailAttachmentRepository{
		db: db,
	}
}

func (r *emailAttachmentRepository) Create(ctx context.Context, attachment *models.EmailAttachment) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailAttachmentRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if attachment == nil {
		return ErrInvalidInput
	}
	if attachment.StorageKey == "" {
		// Rows must only become visible once the blob is durably stored.
		err := errors.New("attachment has no storage key")
		tracing.TraceErr(span, err)
		return err
	}

	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *emailAttachmentRepository) ListByEmail(ctx context.Context, emailID string) ([]*models.EmailAttachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailAttachmentRepository.ListByEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var attachments []*models.EmailAttachment
	err := r.db.WithContext(ctx).
		Where("email_id = ?", emailID).
		Find(&attachments).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return attachments, nil
}

func (r *emailAttachmentRepository) DeleteByEmail(ctx context.Context, emailID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailAttachmentRepository.DeleteByEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if emailID == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).
		Delete(&models.EmailAttachment{}, "email_id = ?", emailID).Error
}
