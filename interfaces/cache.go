package interfaces

import "context"

// CacheService invalidates cached list views after ingestion mutates
// mailbox state. Keys are scoped per user and, for email lists, per folder.
type CacheService interface {
	InvalidateEmailList(ctx context.Context, userID, folderID string) error
	InvalidateFolders(ctx context.Context, userID string) error
	InvalidateContacts(ctx context.Context, userID string) error
}
