package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/dto"
)

type EventPublisher interface {
	PublishEmailIngested(ctx context.Context, message dto.EmailIngested) error
	Close() error
}
