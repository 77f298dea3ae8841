package ingestion

import (
	"context"
	"sync/atomic"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"github.com/mailroomhq/mailroom/dto"
	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/services/storage"
)

const rawMimeContentType = "message/rfc822"

// BlobOffloader moves message content from the provider's temporary URLs
// into durable object storage. Attachment rows are only written after
// their blob upload succeeded, so readers never see a dangling reference.
type BlobOffloader struct {
	fetcher        interfaces.BlobFetcher
	storageService interfaces.StorageService
	attachmentRepo interfaces.EmailAttachmentRepository
	log            logger.Logger
}

func NewBlobOffloader(
	fetcher interfaces.BlobFetcher,
	storageService interfaces.StorageService,
	attachmentRepo interfaces.EmailAttachmentRepository,
	log logger.Logger,
) *BlobOffloader {
	return &BlobOffloader{
		fetcher:        fetcher,
		storageService: storageService,
		attachmentRepo: attachmentRepo,
		log:            log,
	}
}

// OffloadRawMime stores the full RFC-822 source of the message and
// returns the blob key.
func (o *BlobOffloader) OffloadRawMime(ctx context.Context, userID, providerMessageID, url string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BlobOffloader.OffloadRawMime")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUserId(span, userID)

	data, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	key := storage.RawMimeKey(userID, providerMessageID)
	if err := o.storageService.Upload(ctx, key, data, rawMimeContentType); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	return key, nil
}

// OffloadAttachments fetches and stores every attachment concurrently,
// inserting a metadata row per durably stored blob. One failed attachment
// is logged and skipped; it never aborts the rest of the message. Returns
// the number of attachments stored.
func (o *BlobOffloader) OffloadAttachments(ctx context.Context, email *models.Email, attachments []dto.InboundAttachment) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BlobOffloader.OffloadAttachments")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUserId(span, email.UserID)
	span.LogKV("attachments.count", len(attachments))

	var stored int64

	group, groupCtx := errgroup.WithContext(ctx)
	for _, attachment := range attachments {
		attachment := attachment
		group.Go(func() error {
			if err := o.offloadOne(groupCtx, email, attachment); err != nil {
				// Degradation policy: the attachment stays absent.
				tracing.TraceErr(span, err)
				o.log.Warnf("Skipping attachment %q for email %s: %v", attachment.Filename, email.ID, err)
				return nil
			}
			atomic.AddInt64(&stored, 1)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return int(atomic.LoadInt64(&stored)), err
	}

	span.LogKV("attachments.stored", stored)
	return int(atomic.LoadInt64(&stored)), nil
}

func (o *BlobOffloader) offloadOne(ctx context.Context, email *models.Email, attachment dto.InboundAttachment) error {
	data, err := o.fetcher.Fetch(ctx, attachment.URL)
	if err != nil {
		return err
	}

	key := storage.AttachmentKey(email.UserID, email.ProviderMessageID, attachment.Filename)
	if err := o.storageService.Upload(ctx, key, data, attachment.ContentType); err != nil {
		return err
	}

	return o.attachmentRepo.Create(ctx, &models.EmailAttachment{
		EmailID:     email.ID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		ContentID:   attachment.ContentID,
		Size:        len(data),
		StorageKey:  key,
		SourceURL:   attachment.URL,
	})
}
