package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/mailroomhq/mailroom/dto"
	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/enum"
	mailroomerrors "github.com/mailroomhq/mailroom/internal/errors"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/repository"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/internal/utils"
)

// ingestionService drives an inbound delivery through the pipeline:
// authenticate, resolve recipient, parse, dedup, thread, filter, route,
// persist, offload blobs, reconcile the sender contact and invalidate
// caches. It holds the only write authority for Email and Attachment
// creation during ingestion.
type ingestionService struct {
	repos         *repository.Repositories
	filterService interfaces.EmailFilterService
	offloader     *BlobOffloader
	verifier      interfaces.WebhookVerifier
	cleaner       interfaces.InboundCleaner
	cacheService  interfaces.CacheService
	publisher     interfaces.EventPublisher
	log           logger.Logger
}

func NewIngestionService(
	repos *repository.Repositories,
	filterService interfaces.EmailFilterService,
	offloader *BlobOffloader,
	verifier interfaces.WebhookVerifier,
	cleaner interfaces.InboundCleaner,
	cacheService interfaces.CacheService,
	publisher interfaces.EventPublisher,
	log logger.Logger,
) interfaces.IngestionService {
	return &ingestionService{
		repos:         repos,
		filterService: filterService,
		offloader:     offloader,
		verifier:      verifier,
		cleaner:       cleaner,
		cacheService:  cacheService,
		publisher:     publisher,
		log:           log,
	}
}

func (s *ingestionService) ProcessInbound(ctx context.Context, payload *dto.InboundEmailWebhook) (*interfaces.IngestResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingestionService.ProcessInbound")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}
	span.LogKV("providerMessageId", payload.ID)

	// Received -> Authenticated. No side effects before this passes.
	if err := s.verifier.Verify(ctx, payload.ValidationURL); err != nil {
		tracing.TraceErr(span, err)
		return nil, mailroomerrors.ErrWebhookAuthFailed
	}

	// Authenticated -> Parsed. An address that maps to no user is a soft
	// no-op so the provider stops redelivering mail that can never land.
	user, recipient, err := s.resolveRecipient(ctx, payload.Recipients)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailroomerrors.Transient(err)
	}
	if user == nil {
		span.SetTag("outcome", enum.IngestOutcomeUnknownRecipient.String())
		return &interfaces.IngestResult{Outcome: enum.IngestOutcomeUnknownRecipient}, nil
	}
	tracing.TagUserId(span, user.ID)

	envelope := ParseEnvelope(payload.Headers)
	if envelope.MessageID == "" {
		// Missing Message-Id is tolerated: fall back to the provider's own
		// identifier so threading still works.
		if payload.MessageID != "" {
			envelope.MessageID = utils.NormalizeMessageID(payload.MessageID)
		} else {
			envelope.MessageID = payload.ID
		}
	}
	if envelope.ToEmail == "" {
		envelope.ToEmail = recipient
	}

	// Dedup pre-check on (user, provider message id); at-least-once
	// delivery makes duplicates an expected case, not an error.
	existing, err := s.repos.EmailRepository.GetByUserAndProviderMessageID(ctx, user.ID, payload.ID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailroomerrors.Transient(err)
	}
	if existing != nil {
		span.SetTag("outcome", enum.IngestOutcomeDuplicate.String())
		return &interfaces.IngestResult{Outcome: enum.IngestOutcomeDuplicate, EmailID: existing.ID}, nil
	}

	threadID := ResolveThreadID(envelope.MessageID, envelope.InReplyTo, envelope.References)

	// Parsed -> Filtered
	rules, err := s.repos.FilterRuleRepository.ListEnabledByUser(ctx, user.ID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, mailroomerrors.Transient(err)
	}
	decision := s.filterService.Apply(ctx, rules, interfaces.FilterFields{
		FromEmail:     envelope.FromEmail,
		ToEmail:       envelope.ToEmail,
		Subject:       envelope.Subject,
		BodyPlaintext: payload.Body.Plaintext,
	})

	finalFolderID, err := s.resolveFolder(ctx, user.ID, payload.IsSpam, decision.FolderID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	receivedAt := s.parseProcessedAt(payload.ProcessedAt)

	email := &models.Email{
		UserID:            user.ID,
		FolderID:          finalFolderID,
		MessageID:         envelope.MessageID,
		ProviderMessageID: payload.ID,
		ThreadID:          threadID,
		InReplyTo:         envelope.InReplyTo,
		References:        pq.StringArray(envelope.References),
		FromAddress:       envelope.FromEmail,
		FromName:          envelope.FromName,
		ToAddress:         envelope.ToEmail,
		ToName:            envelope.ToName,
		Subject:           envelope.Subject,
		BodyText:          payload.Body.Plaintext,
		BodyHTML:          payload.Body.HTML,
		StrippedText:      payload.Body.StrippedPlaintext,
		StrippedHTML:      payload.Body.StrippedHTML,
		HasAttachments:    len(payload.Attachments) > 0,
		IsSpam:            payload.IsSpam,
		Labels:            pq.StringArray(decision.Labels),
		SpfResult:         payload.SpfResult,
		DkimPassed:        payload.DkimResult,
		DmarcAligned:      payload.DmarcAligned,
		ReceivedAt:        &receivedAt,
	}

	// Filtered -> Persisted. The unique index backstops the pre-check
	// against concurrent deliveries of the same message.
	emailID, err := s.repos.EmailRepository.Create(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			winner, lookupErr := s.repos.EmailRepository.GetByUserAndProviderMessageID(ctx, user.ID, payload.ID)
			if lookupErr != nil || winner == nil {
				return nil, mailroomerrors.Transient(err)
			}
			span.SetTag("outcome", enum.IngestOutcomeDuplicate.String())
			return &interfaces.IngestResult{Outcome: enum.IngestOutcomeDuplicate, EmailID: winner.ID}, nil
		}
		tracing.TraceErr(span, err)
		return nil, mailroomerrors.Transient(err)
	}
	email.ID = emailID
	tracing.TagEntity(span, emailID)

	// Persisted -> BlobsAttached. Per-blob failures degrade, they never
	// unwind the already persisted email.
	s.offloadBlobs(ctx, span, email, payload)

	// BlobsAttached -> ContactReconciled
	if envelope.FromEmail != "" {
		if _, err := s.repos.ContactRepository.Reconcile(ctx, user.ID, envelope.FromEmail, envelope.FromName, receivedAt); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Contact reconciliation failed for email %s: %v", emailID, err)
		}
	}

	// ContactReconciled -> CacheInvalidated
	if err := s.cacheService.InvalidateEmailList(ctx, user.ID, finalFolderID); err != nil {
		s.log.Warnf("Cache invalidation failed for user %s folder %s: %v", user.ID, finalFolderID, err)
	}
	if err := s.cacheService.InvalidateContacts(ctx, user.ID); err != nil {
		s.log.Warnf("Contact cache invalidation failed for user %s: %v", user.ID, err)
	}

	// The provider's temporary copy is no longer needed.
	if s.cleaner != nil && payload.DeletionURL != "" {
		if err := s.cleaner.DeleteInbound(ctx, payload.DeletionURL); err != nil {
			s.log.Warnf("Provider deletion call failed for message %s: %v", payload.ID, err)
		}
	}

	if s.publisher != nil {
		event := dto.EmailIngested{
			EmailID:        emailID,
			UserID:         user.ID,
			FolderID:       finalFolderID,
			ThreadID:       threadID,
			FromEmail:      envelope.FromEmail,
			Subject:        envelope.Subject,
			IsSpam:         payload.IsSpam,
			HasAttachments: email.HasAttachments,
			ReceivedAt:     receivedAt,
		}
		if err := s.publisher.PublishEmailIngested(ctx, event); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Failed to publish ingested event for email %s: %v", emailID, err)
		}
	}

	span.SetTag("outcome", enum.IngestOutcomeIngested.String())
	return &interfaces.IngestResult{Outcome: enum.IngestOutcomeIngested, EmailID: emailID}, nil
}

func (s *ingestionService) resolveRecipient(ctx context.Context, recipients []string) (*models.User, string, error) {
	for _, recipient := range recipients {
		address := strings.ToLower(strings.TrimSpace(recipient))
		if address == "" {
			continue
		}
		user, err := s.repos.UserRepository.GetByEmail(ctx, address)
		if err != nil {
			return nil, "", err
		}
		if user != nil {
			return user, address, nil
		}
	}
	return nil, "", nil
}

// resolveFolder validates the filter target and applies the spam
// override. A resolved user without an inbox is broken provisioning, so
// the delivery stays retriable rather than being acknowledged into a
// folder that does not exist.
func (s *ingestionService) resolveFolder(ctx context.Context, userID string, isSpam bool, filterFolderID string) (string, error) {
	inbox, err := s.repos.FolderRepository.GetByType(ctx, userID, enum.FolderInbox)
	if err != nil {
		return "", mailroomerrors.Transient(err)
	}
	if inbox == nil {
		return "", mailroomerrors.Transient(errors.Errorf("user %s has no inbox folder", userID))
	}

	spamFolderID := ""
	if isSpam {
		spamFolder, err := s.repos.FolderRepository.GetByType(ctx, userID, enum.FolderSpam)
		if err != nil {
			return "", mailroomerrors.Transient(err)
		}
		if spamFolder != nil {
			spamFolderID = spamFolder.ID
		}
	}

	if filterFolderID != "" {
		folder, err := s.repos.FolderRepository.GetByID(ctx, userID, filterFolderID)
		if err != nil {
			return "", mailroomerrors.Transient(err)
		}
		if folder == nil {
			s.log.Warnf("Filter rule targets missing folder %s for user %s, falling back to inbox", filterFolderID, userID)
			filterFolderID = ""
		}
	}

	return RouteFolder(isSpam, filterFolderID, spamFolderID, inbox.ID), nil
}

func (s *ingestionService) offloadBlobs(ctx context.Context, span opentracing.Span, email *models.Email, payload *dto.InboundEmailWebhook) {
	if payload.Body.RawMime != nil && payload.Body.RawMime.URL != "" {
		key, err := s.offloader.OffloadRawMime(ctx, email.UserID, email.ProviderMessageID, payload.Body.RawMime.URL)
		if err != nil {
			tracing.TraceErr(span, err)
			s.log.Warnf("Raw MIME offload failed for email %s: %v", email.ID, err)
		} else if err := s.repos.EmailRepository.SetRawMimeKey(ctx, email.ID, key); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Failed to record raw MIME key for email %s: %v", email.ID, err)
		}
	}

	if len(payload.Attachments) > 0 {
		stored, err := s.offloader.OffloadAttachments(ctx, email, payload.Attachments)
		if err != nil {
			tracing.TraceErr(span, err)
		}
		span.LogKV("attachments.requested", len(payload.Attachments), "attachments.stored", stored)
	}
}

func (s *ingestionService) parseProcessedAt(processedAt string) time.Time {
	if processedAt != "" {
		if ts, err := time.Parse(time.RFC3339, processedAt); err == nil {
			return ts.UTC()
		}
	}
	return utils.Now()
}
