package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/repository"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

type fakeEmailRepo struct {
	trash  []*models.Email
	emails map[string]*models.Email
}

func (f *fakeEmailRepo) Create(ctx context.Context, email *models.Email) (string, error) {
	return "", nil
}

func (f *fakeEmailRepo) GetByID(ctx context.Context, id string) (*models.Email, error) {
	return f.emails[id], nil
}

func (f *fakeEmailRepo) GetByUserAndProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) SetRawMimeKey(ctx context.Context, emailID, rawMimeKey string) error {
	return nil
}

func (f *fakeEmailRepo) ListByThread(ctx context.Context, userID, threadID string) ([]*models.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) ListTrashOlderThan(ctx context.Context, before time.Time, limit int) ([]*models.Email, error) {
	return f.trash, nil
}

func (f *fakeEmailRepo) HardDelete(ctx context.Context, emailID string) error {
	delete(f.emails, emailID)
	return nil
}

type fakeAttachmentRepo struct {
	byEmail map[string][]*models.EmailAttachment
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *models.EmailAttachment) error {
	return nil
}

func (f *fakeAttachmentRepo) ListByEmail(ctx context.Context, emailID string) ([]*models.EmailAttachment, error) {
	return f.byEmail[emailID], nil
}

func (f *fakeAttachmentRepo) DeleteByEmail(ctx context.Context, emailID string) error {
	delete(f.byEmail, emailID)
	return nil
}

type fakeStorage struct {
	deleted   []string
	deleteErr error
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) GetPublicURL(key string) string {
	return ""
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) InvalidateEmailList(ctx context.Context, userID, folderID string) error {
	f.invalidated = append(f.invalidated, userID+":"+folderID)
	return nil
}

func (f *fakeCache) InvalidateFolders(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeCache) InvalidateContacts(ctx context.Context, userID string) error {
	return nil
}

func TestPurgeTrash_RemovesRowsAndBlobs(t *testing.T) {
	trashed := &models.Email{
		ID:         "email-1",
		UserID:     "user-1",
		FolderID:   "folder-trash",
		RawMimeKey: "user-1/prov-1/raw.mime",
	}
	emailRepo := &fakeEmailRepo{
		trash:  []*models.Email{trashed},
		emails: map[string]*models.Email{"email-1": trashed},
	}
	attachmentRepo := &fakeAttachmentRepo{
		byEmail: map[string][]*models.EmailAttachment{
			"email-1": {
				{ID: "file-1", EmailID: "email-1", StorageKey: "user-1/prov-1/attachments/a.pdf"},
			},
		},
	}
	storage := &fakeStorage{}
	cache := &fakeCache{}

	svc := NewMaintenanceService(&repository.Repositories{
		EmailRepository:           emailRepo,
		EmailAttachmentRepository: attachmentRepo,
	}, storage, cache, getLogger())

	purged, err := svc.PurgeTrash(context.Background(), 30*24*time.Hour, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Empty(t, emailRepo.emails)
	assert.Empty(t, attachmentRepo.byEmail)
	assert.ElementsMatch(t, []string{"user-1/prov-1/attachments/a.pdf", "user-1/prov-1/raw.mime"}, storage.deleted)
	assert.Equal(t, []string{"user-1:folder-trash"}, cache.invalidated)
}

func TestPurgeTrash_BlobDeleteFailureStillRemovesRows(t *testing.T) {
	trashed := &models.Email{ID: "email-1", UserID: "user-1", FolderID: "folder-trash", RawMimeKey: "user-1/prov-1/raw.mime"}
	emailRepo := &fakeEmailRepo{
		trash:  []*models.Email{trashed},
		emails: map[string]*models.Email{"email-1": trashed},
	}
	storage := &fakeStorage{deleteErr: assert.AnError}

	svc := NewMaintenanceService(&repository.Repositories{
		EmailRepository:           emailRepo,
		EmailAttachmentRepository: &fakeAttachmentRepo{byEmail: map[string][]*models.EmailAttachment{}},
	}, storage, &fakeCache{}, getLogger())

	purged, err := svc.PurgeTrash(context.Background(), 30*24*time.Hour, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Empty(t, emailRepo.emails)
}

func TestPurgeTrash_EmptyTrashIsNoOp(t *testing.T) {
	svc := NewMaintenanceService(&repository.Repositories{
		EmailRepository:           &fakeEmailRepo{emails: map[string]*models.Email{}},
		EmailAttachmentRepository: &fakeAttachmentRepo{byEmail: map[string][]*models.EmailAttachment{}},
	}, &fakeStorage{}, &fakeCache{}, getLogger())

	purged, err := svc.PurgeTrash(context.Background(), 30*24*time.Hour, 500)

	require.NoError(t, err)
	assert.Zero(t, purged)
}
