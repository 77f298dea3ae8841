package maintenance

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/repository"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/internal/utils"
)

type maintenanceService struct {
	repos          *repository.Repositories
	storageService interfaces.StorageService
	cacheService   interfaces.CacheService
	log            logger.Logger
}

func NewMaintenanceService(
	repos *repository.Repositories,
	storageService interfaces.StorageService,
	cacheService interfaces.CacheService,
	log logger.Logger,
) interfaces.MaintenanceService {
	return &maintenanceService{
		repos:          repos,
		storageService: storageService,
		cacheService:   cacheService,
		log:            log,
	}
}

// PurgeTrash removes trash-folder emails whose last update predates the
// retention window. Blob deletions are attempted first; a failed blob
// delete is logged and the row removal proceeds, an orphaned blob being
// preferable to a row pointing at reclaimed storage.
func (s *maintenanceService) PurgeTrash(ctx context.Context, retention time.Duration, limit int) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "maintenanceService.PurgeTrash")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	cutoff := utils.Now().Add(-retention)
	span.LogKV("cutoff", cutoff.Format(time.RFC3339), "limit", limit)

	emails, err := s.repos.EmailRepository.ListTrashOlderThan(ctx, cutoff, limit)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	purged := 0
	for _, email := range emails {
		if err := s.purgeEmail(ctx, email.ID); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Failed to purge email %s: %v", email.ID, err)
			continue
		}
		if err := s.cacheService.InvalidateEmailList(ctx, email.UserID, email.FolderID); err != nil {
			s.log.Warnf("Cache invalidation failed for user %s folder %s: %v", email.UserID, email.FolderID, err)
		}
		purged++
	}

	span.LogKV("purged", purged)
	return purged, nil
}

func (s *maintenanceService) purgeEmail(ctx context.Context, emailID string) error {
	email, err := s.repos.EmailRepository.GetByID(ctx, emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return nil
	}

	attachments, err := s.repos.EmailAttachmentRepository.ListByEmail(ctx, emailID)
	if err != nil {
		return err
	}
	for _, attachment := range attachments {
		if attachment.StorageKey == "" {
			continue
		}
		if err := s.storageService.Delete(ctx, attachment.StorageKey); err != nil {
			s.log.Warnf("Failed to delete attachment blob %s: %v", attachment.StorageKey, err)
		}
	}

	if email.RawMimeKey != "" {
		if err := s.storageService.Delete(ctx, email.RawMimeKey); err != nil {
			s.log.Warnf("Failed to delete raw MIME blob %s: %v", email.RawMimeKey, err)
		}
	}

	if err := s.repos.EmailAttachmentRepository.DeleteByEmail(ctx, emailID); err != nil {
		return err
	}

	return s.repos.EmailRepository.HardDelete(ctx, emailID)
}
