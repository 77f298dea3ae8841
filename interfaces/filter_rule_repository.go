package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/internal/models"
)

type FilterRuleRepository interface {
	// ListEnabledByUser returns enabled rules ordered by priority descending.
	ListEnabledByUser(ctx context.Context, userID string) ([]*models.FilterRule, error)
}
