package interfaces

import (
	"context"

	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/models"
)

// FolderRepository is read-only for the ingestion pipeline. Folders are
// created and mutated elsewhere; the pipeline only resolves identity.
type FolderRepository interface {
	GetByID(ctx context.Context, userID, folderID string) (*models.Folder, error)
	GetByType(ctx context.Context, userID string, folderType enum.FolderType) (*models.Folder, error)
}
