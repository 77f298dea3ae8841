package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/internal/utils"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{
		db: db,
	}
}

// Create inserts the email row. The unique index on
// (user_id, provider_message_id) backstops the orchestrator's dedup
// pre-check; a concurrent duplicate surfaces as ErrDuplicateEmail.
func (r *emailRepository) Create(ctx context.Context, email *models.Email) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if email == nil {
		return "", ErrInvalidInput
	}

	if email.MessageID != "" {
		email.MessageID = utils.NormalizeMessageID(email.MessageID)
	}

	if email.Subject != "" {
		email.CleanSubject = utils.NormalizeSubject(email.Subject)
	}

	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			span.SetTag("duplicate", true)
			return "", ErrDuplicateEmail
		}
		tracing.TraceErr(span, result.Error)
		return "", result.Error
	}

	return email.ID, nil
}

func (r *emailRepository) GetByID(ctx context.Context, id string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.Email
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) GetByUserAndProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByUserAndProviderMessageID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	var email models.Email
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_message_id = ?", userID, providerMessageID).
		First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) SetRawMimeKey(ctx context.Context, emailID, rawMimeKey string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.SetRawMimeKey")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if emailID == "" || rawMimeKey == "" {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", emailID).
		Updates(map[string]interface{}{
			"raw_mime_key": rawMimeKey,
			"updated_at":   utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

func (r *emailRepository) ListByThread(ctx context.Context, userID, threadID string) ([]*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListByThread")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	var emails []*models.Email
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND thread_id = ?", userID, threadID).
		Order("received_at ASC").
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return emails, nil
}

func (r *emailRepository) ListTrashOlderThan(ctx context.Context, before time.Time, limit int) ([]*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListTrashOlderThan")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var emails []*models.Email
	if err := r.db.WithContext(ctx).
		Joins("JOIN folders ON folders.id = emails.folder_id").
		Where("folders.type = ? AND emails.updated_at < ?", enum.FolderTrash, before).
		Limit(limit).
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return emails, nil
}

// HardDelete removes the row permanently, bypassing the soft delete.
func (r *emailRepository) HardDelete(ctx context.Context, emailID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.HardDelete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if emailID == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).
		Unscoped().
		Delete(&models.Email{}, "id = ?", emailID).Error
}
