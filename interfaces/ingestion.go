package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/dto"
	"github.com/mailroomhq/mailroom/internal/enum"
)

// IngestResult reports how an inbound delivery was disposed of. EmailID
// is set for ingested and duplicate outcomes.
type IngestResult struct {
	Outcome enum.IngestOutcome
	EmailID string
}

type IngestionService interface {
	ProcessInbound(ctx context.Context, payload *dto.InboundEmailWebhook) (*IngestResult, error)
}
