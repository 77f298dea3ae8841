package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type filterRuleRepository struct {
	db *gorm.DB
}

func NewFilterRuleRepository(db *gorm.DB) interfaces.FilterRuleRepository {
	return &filterRuleRepository{
		db: db,
	}
}

func (r *filterRuleRepository) ListEnabledByUser(ctx context.Context, userID string) ([]*models.FilterRule, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "filterRuleRepository.ListEnabledByUser")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	var rules []*models.FilterRule
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("priority DESC").
		Find(&rules).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return rules, nil
}
