package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/internal/models"
)

// FilterFields are the message fields filter conditions can match on.
type FilterFields struct {
	FromEmail     string
	ToEmail       string
	Subject       string
	BodyPlaintext string
}

// FilterDecision is the outcome of running a user's rules: an optional
// folder override and the accumulated label set.
type FilterDecision struct {
	FolderID string
	Labels   []string
}

type EmailFilterService interface {
	Apply(ctx context.Context, rules []*models.FilterRule, fields FilterFields) FilterDecision
}
