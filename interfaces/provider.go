package interfaces

import "context"

// WebhookVerifier checks delivery authenticity with the inbound provider
// before any pipeline state is touched.
type WebhookVerifier interface {
	Verify(ctx context.Context, validationURL string) error
}

// BlobFetcher downloads message content from the provider's temporary
// URLs. Implementations bound each fetch with a timeout.
type BlobFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// InboundCleaner asks the provider to drop its temporary copy once the
// message is durably stored. Best effort, never fatal.
type InboundCleaner interface {
	DeleteInbound(ctx context.Context, deletionURL string) error
}
