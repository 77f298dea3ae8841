package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/internal/utils"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) interfaces.ContactRepository {
	return &contactRepository{
		db: db,
	}
}

// Reconcile upserts in one statement. The conflict clause increments the
// stored counter server-side, so two concurrent ingestions from the same
// sender both land their increment instead of one overwriting the other.
func (r *contactRepository) Reconcile(ctx context.Context, userID, email, fullName string, contactedAt time.Time) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "contactRepository.Reconcile")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	email = strings.ToLower(strings.TrimSpace(email))
	if userID == "" || email == "" {
		return "", ErrInvalidInput
	}

	contact := models.Contact{
		UserID:          userID,
		Email:           email,
		FullName:        fullName,
		ContactCount:    1,
		LastContactedAt: &contactedAt,
	}

	assignments := map[string]interface{}{
		"contact_count":     gorm.Expr("contacts.contact_count + 1"),
		"last_contacted_at": contactedAt,
		"updated_at":        utils.Now(),
	}
	if fullName != "" {
		assignments["full_name"] = fullName
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "email"}},
				DoUpdates: clause.Assignments(assignments),
			},
			clause.Returning{Columns: []clause.Column{{Name: "id"}}},
		).
		Create(&contact).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	return contact.ID, nil
}

func (r *contactRepository) GetByUserAndEmail(ctx context.Context, userID, email string) (*models.Contact, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "contactRepository.GetByUserAndEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	email = strings.ToLower(strings.TrimSpace(email))

	var contact models.Contact
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND email = ?", userID, email).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &contact, nil
}
