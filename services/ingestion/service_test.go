package ingestion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailroomhq/mailroom/dto"
	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/enum"
	mailroomerrors "github.com/mailroomhq/mailroom/internal/errors"
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

// In-memory fakes

type fakeUserRepo struct {
	usersByEmail map[string]*models.User
	err          error
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.usersByEmail[email], nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range f.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

type fakeFolderRepo struct {
	folders []*models.Folder
}

func (f *fakeFolderRepo) GetByID(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.ID == folderID {
			return folder, nil
		}
	}
	return nil, nil
}

func (f *fakeFolderRepo) GetByType(ctx context.Context, userID string, folderType enum.FolderType) (*models.Folder, error) {
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.Type == folderType {
			return folder, nil
		}
	}
	return nil, nil
}

type fakeFilterRuleRepo struct {
	rules []*models.FilterRule
}

func (f *fakeFilterRuleRepo) ListEnabledByUser(ctx context.Context, userID string) ([]*models.FilterRule, error) {
	return f.rules, nil
}

type fakeEmailRepo struct {
	emails    map[string]*models.Email
	createErr error
	nextID    int
}

func newFakeEmailRepo() *fakeEmailRepo {
	return &fakeEmailRepo{emails: make(map[string]*models.Email)}
}

func (f *fakeEmailRepo) Create(ctx context.Context, email *models.Email) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	for _, existing := range f.emails {
		if existing.UserID == email.UserID && existing.ProviderMessageID == email.ProviderMessageID {
			return "", repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	id := fmt.Sprintf("email-%d", f.nextID)
	stored := *email
	stored.ID = id
	f.emails[id] = &stored
	return id, nil
}

func (f *fakeEmailRepo) GetByID(ctx context.Context, id string) (*models.Email, error) {
	return f.emails[id], nil
}

func (f *fakeEmailRepo) GetByUserAndProviderMessageID(ctx context.Context, userID, providerMessageID string) (*models.Email, error) {
	for _, email := range f.emails {
		if email.UserID == userID && email.ProviderMessageID == providerMessageID {
			return email, nil
		}
	}
	return nil, nil
}

func (f *fakeEmailRepo) SetRawMimeKey(ctx context.Context, emailID, rawMimeKey string) error {
	email, ok := f.emails[emailID]
	if !ok {
		return repository.ErrEmailNotFound
	}
	email.RawMimeKey = rawMimeKey
	return nil
}

func (f *fakeEmailRepo) ListByThread(ctx context.Context, userID, threadID string) ([]*models.Email, error) {
	var result []*models.Email
	for _, email := range f.emails {
		if email.UserID == userID && email.ThreadID == threadID {
			result = append(result, email)
		}
	}
	return result, nil
}

func (f *fakeEmailRepo) ListTrashOlderThan(ctx context.Context, before time.Time, limit int) ([]*models.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) HardDelete(ctx context.Context, emailID string) error {
	delete(f.emails, emailID)
	return nil
}

type fakeAttachmentRepo struct {
	attachments []*models.EmailAttachment
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *models.EmailAttachment) error {
	f.attachments = append(f.attachments, attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByEmail(ctx context.Context, emailID string) ([]*models.EmailAttachment, error) {
	var result []*models.EmailAttachment
	for _, attachment := range f.attachments {
		if attachment.EmailID == emailID {
			result = append(result, attachment)
		}
	}
	return result, nil
}

func (f *fakeAttachmentRepo) DeleteByEmail(ctx context.Context, emailID string) error {
	return nil
}

type fakeContactRepo struct {
	reconciled []string
	err        error
}

func (f *fakeContactRepo) Reconcile(ctx context.Context, userID, email, fullName string, contactedAt time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.reconciled = append(f.reconciled, email)
	return "contact-1", nil
}

func (f *fakeContactRepo) GetByUserAndEmail(ctx context.Context, userID, email string) (*models.Contact, error) {
	return nil, nil
}

type fakeCache struct {
	invalidatedEmailLists []string
	invalidatedContacts   []string
}

func (f *fakeCache) InvalidateEmailList(ctx context.Context, userID, folderID string) error {
	f.invalidatedEmailLists = append(f.invalidatedEmailLists, userID+":"+folderID)
	return nil
}

func (f *fakeCache) InvalidateFolders(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeCache) InvalidateContacts(ctx context.Context, userID string) error {
	f.invalidatedContacts = append(f.invalidatedContacts, userID)
	return nil
}

type fakeVerifier struct {
	err   error
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, validationURL string) error {
	f.calls++
	return f.err
}

type fakeFetcher struct {
	blobs  map[string][]byte
	failed map[string]bool
	calls  int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	if f.failed[url] {
		return nil, errors.Wrap(mailroomerrors.ErrAttachmentFetch, url)
	}
	return f.blobs[url], nil
}

type fakeStorage struct {
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.uploads[key] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	return f.uploads[key], nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeStorage) GetPublicURL(key string) string {
	return ""
}

type fakeCleaner struct {
	deleted []string
}

func (f *fakeCleaner) DeleteInbound(ctx context.Context, deletionURL string) error {
	f.deleted = append(f.deleted, deletionURL)
	return nil
}

type fakePublisher struct {
	events []dto.EmailIngested
}

func (f *fakePublisher) PublishEmailIngested(ctx context.Context, message dto.EmailIngested) error {
	f.events = append(f.events, message)
	return nil
}

func (f *fakePublisher) Close() error {
	return nil
}

type fakeFilterService struct {
	decision interfaces.FilterDecision
}

func (f *fakeFilterService) Apply(ctx context.Context, rules []*models.FilterRule, fields interfaces.FilterFields) interfaces.FilterDecision {
	return f.decision
}

// Test harness

type pipelineFixture struct {
	service    interfaces.IngestionService
	userRepo   *fakeUserRepo
	folderRepo *fakeFolderRepo
	ruleRepo   *fakeFilterRuleRepo
	emailRepo  *fakeEmailRepo
	attachRepo *fakeAttachmentRepo
	contacts   *fakeContactRepo
	cache      *fakeCache
	verifier   *fakeVerifier
	fetcher    *fakeFetcher
	storage    *fakeStorage
	cleaner    *fakeCleaner
	publisher  *fakePublisher
	filter     *fakeFilterService
}

func newPipelineFixture() *pipelineFixture {
	log := getLogger()

	f := &pipelineFixture{
		userRepo: &fakeUserRepo{usersByEmail: map[string]*models.User{
			"bob@mailroom.dev": {ID: "user-1", Email: "bob@mailroom.dev"},
		}},
		folderRepo: &fakeFolderRepo{folders: []*models.Folder{
			{ID: "folder-inbox", UserID: "user-1", Type: enum.FolderInbox},
			{ID: "folder-spam", UserID: "user-1", Type: enum.FolderSpam},
			{ID: "folder-work", UserID: "user-1", Type: enum.FolderCustom},
		}},
		ruleRepo:   &fakeFilterRuleRepo{},
		emailRepo:  newFakeEmailRepo(),
		attachRepo: &fakeAttachmentRepo{},
		contacts:   &fakeContactRepo{},
		cache:      &fakeCache{},
		verifier:   &fakeVerifier{},
		fetcher:    &fakeFetcher{blobs: map[string][]byte{}, failed: map[string]bool{}},
		storage:    newFakeStorage(),
		cleaner:    &fakeCleaner{},
		publisher:  &fakePublisher{},
		filter:     &fakeFilterService{},
	}

	repos := &repository.Repositories{
		UserRepository:            f.userRepo,
		FolderRepository:          f.folderRepo,
		FilterRuleRepository:      f.ruleRepo,
		EmailRepository:           f.emailRepo,
		EmailAttachmentRepository: f.attachRepo,
		ContactRepository:         f.contacts,
	}

	offloader := NewBlobOffloader(f.fetcher, f.storage, f.attachRepo, log)
	f.service = NewIngestionService(repos, f.filter, offloader, f.verifier, f.cleaner, f.cache, f.publisher, log)
	return f
}

func basePayload() *dto.InboundEmailWebhook {
	return &dto.InboundEmailWebhook{
		ID:         "prov-msg-1",
		Recipients: []string{"bob@mailroom.dev"},
		Headers: map[string][]string{
			"From":       {"Alice <alice@example.com>"},
			"To":         {"bob@mailroom.dev"},
			"Subject":    {"Hello"},
			"Message-Id": {"<msg-1@example.com>"},
		},
		Body: dto.InboundEmailBody{
			Plaintext: "hi there",
			HTML:      "<p>hi there</p>",
		},
		ValidationURL: "https://provider.test/validate/1",
		DeletionURL:   "https://provider.test/delete/1",
		ProcessedAt:   "2026-08-29T10:00:00Z",
	}
}

func TestProcessInbound_AuthFailureRejectsBeforeAnySideEffect(t *testing.T) {
	f := newPipelineFixture()
	f.verifier.err = errors.New("validation endpoint said no")

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, mailroomerrors.ErrWebhookAuthFailed)
	assert.Empty(t, f.emailRepo.emails)
	assert.Empty(t, f.contacts.reconciled)
	assert.Empty(t, f.cleaner.deleted)
}

func TestProcessInbound_UnknownRecipientIsSoftNoOp(t *testing.T) {
	f := newPipelineFixture()
	payload := basePayload()
	payload.Recipients = []string{"nobody@mailroom.dev"}

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeUnknownRecipient, result.Outcome)
	assert.Empty(t, result.EmailID)
	assert.Empty(t, f.emailRepo.emails)
}

func TestProcessInbound_SuccessfulIngestion(t *testing.T) {
	f := newPipelineFixture()

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeIngested, result.Outcome)
	require.NotEmpty(t, result.EmailID)

	email := f.emailRepo.emails[result.EmailID]
	require.NotNil(t, email)
	assert.Equal(t, "user-1", email.UserID)
	assert.Equal(t, "folder-inbox", email.FolderID)
	assert.Equal(t, "msg-1@example.com", email.MessageID)
	assert.Equal(t, "msg-1@example.com", email.ThreadID)
	assert.Equal(t, "prov-msg-1", email.ProviderMessageID)
	assert.Equal(t, "alice@example.com", email.FromAddress)
	assert.Equal(t, "Alice", email.FromName)
	assert.False(t, email.HasAttachments)

	assert.Equal(t, []string{"alice@example.com"}, f.contacts.reconciled)
	assert.Equal(t, []string{"user-1:folder-inbox"}, f.cache.invalidatedEmailLists)
	assert.Equal(t, []string{"user-1"}, f.cache.invalidatedContacts)
	assert.Equal(t, []string{"https://provider.test/delete/1"}, f.cleaner.deleted)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, result.EmailID, f.publisher.events[0].EmailID)
	assert.Equal(t, "folder-inbox", f.publisher.events[0].FolderID)
}

func TestProcessInbound_ReplyJoinsExistingThread(t *testing.T) {
	f := newPipelineFixture()

	_, err := f.service.ProcessInbound(context.Background(), basePayload())
	require.NoError(t, err)

	reply := basePayload()
	reply.ID = "prov-msg-2"
	reply.Headers = map[string][]string{
		"From":        {"Alice <alice@example.com>"},
		"Subject":     {"Re: Hello"},
		"Message-Id":  {"<msg-2@example.com>"},
		"In-Reply-To": {"<msg-1@example.com>"},
		"References":  {"<msg-1@example.com>"},
	}

	result, err := f.service.ProcessInbound(context.Background(), reply)

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	require.NotNil(t, email)
	assert.Equal(t, "msg-1@example.com", email.ThreadID)
}

func TestProcessInbound_DuplicateDeliveryShortCircuits(t *testing.T) {
	f := newPipelineFixture()

	first, err := f.service.ProcessInbound(context.Background(), basePayload())
	require.NoError(t, err)

	contactCalls := len(f.contacts.reconciled)
	fetchCalls := f.fetcher.calls

	second, err := f.service.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeDuplicate, second.Outcome)
	assert.Equal(t, first.EmailID, second.EmailID)
	assert.Len(t, f.emailRepo.emails, 1)
	// The duplicate path must not redo side effects.
	assert.Equal(t, contactCalls, len(f.contacts.reconciled))
	assert.Equal(t, fetchCalls, f.fetcher.calls)
}

func TestProcessInbound_SpamOverridesFilterDecision(t *testing.T) {
	f := newPipelineFixture()
	f.filter.decision = interfaces.FilterDecision{FolderID: "folder-work", Labels: []string{"label-work"}}

	payload := basePayload()
	payload.IsSpam = true

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	require.NotNil(t, email)
	assert.Equal(t, "folder-spam", email.FolderID)
	assert.True(t, email.IsSpam)
	// Labels from matching rules are preserved even when spam wins routing.
	assert.Equal(t, []string{"label-work"}, []string(email.Labels))
}

func TestProcessInbound_FilterMovesToExistingFolder(t *testing.T) {
	f := newPipelineFixture()
	f.filter.decision = interfaces.FilterDecision{FolderID: "folder-work"}

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	assert.Equal(t, "folder-work", email.FolderID)
	assert.Equal(t, []string{"user-1:folder-work"}, f.cache.invalidatedEmailLists)
}

func TestProcessInbound_FilterTargetingMissingFolderFallsBackToInbox(t *testing.T) {
	f := newPipelineFixture()
	f.filter.decision = interfaces.FilterDecision{FolderID: "folder-deleted"}

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	assert.Equal(t, "folder-inbox", email.FolderID)
}

func TestProcessInbound_MissingInboxIsTransient(t *testing.T) {
	f := newPipelineFixture()
	f.folderRepo.folders = nil

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, mailroomerrors.IsTransient(err))
}

func TestProcessInbound_DatabaseFailureIsTransient(t *testing.T) {
	f := newPipelineFixture()
	f.emailRepo.createErr = errors.New("connection refused")

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, mailroomerrors.IsTransient(err))
}

func TestProcessInbound_MissingMessageIDFallsBackToProviderID(t *testing.T) {
	f := newPipelineFixture()
	payload := basePayload()
	payload.Headers = map[string][]string{
		"From":    {"alice@example.com"},
		"Subject": {"no message id"},
	}

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	assert.Equal(t, "prov-msg-1", email.MessageID)
	assert.Equal(t, "prov-msg-1", email.ThreadID)
}

func TestProcessInbound_AttachmentsAreOffloadedAndRecorded(t *testing.T) {
	f := newPipelineFixture()
	f.fetcher.blobs["https://provider.test/blob/report.pdf"] = []byte("pdf-bytes")

	payload := basePayload()
	payload.Attachments = []dto.InboundAttachment{
		{Filename: "report.pdf", ContentType: "application/pdf", URL: "https://provider.test/blob/report.pdf", Size: 9},
	}

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	assert.True(t, email.HasAttachments)

	require.Len(t, f.attachRepo.attachments, 1)
	attachment := f.attachRepo.attachments[0]
	assert.Equal(t, result.EmailID, attachment.EmailID)
	assert.Equal(t, "user-1/prov-msg-1/attachments/report.pdf", attachment.StorageKey)
	assert.Equal(t, []byte("pdf-bytes"), f.storage.uploads[attachment.StorageKey])
}

func TestProcessInbound_FailedAttachmentDegradesWithoutAbort(t *testing.T) {
	f := newPipelineFixture()
	f.fetcher.blobs["https://provider.test/blob/ok.txt"] = []byte("ok")
	f.fetcher.failed["https://provider.test/blob/broken.txt"] = true

	payload := basePayload()
	payload.Attachments = []dto.InboundAttachment{
		{Filename: "ok.txt", ContentType: "text/plain", URL: "https://provider.test/blob/ok.txt"},
		{Filename: "broken.txt", ContentType: "text/plain", URL: "https://provider.test/blob/broken.txt"},
	}

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeIngested, result.Outcome)

	email := f.emailRepo.emails[result.EmailID]
	// HasAttachments reflects the message as sent, not what survived.
	assert.True(t, email.HasAttachments)
	require.Len(t, f.attachRepo.attachments, 1)
	assert.Equal(t, "ok.txt", f.attachRepo.attachments[0].Filename)
}

func TestProcessInbound_RawMimeIsOffloaded(t *testing.T) {
	f := newPipelineFixture()
	f.fetcher.blobs["https://provider.test/blob/raw"] = []byte("MIME-Version: 1.0\r\n")

	payload := basePayload()
	payload.Body.RawMime = &dto.InboundBlob{URL: "https://provider.test/blob/raw", Size: 19}

	result, err := f.service.ProcessInbound(context.Background(), payload)

	require.NoError(t, err)
	email := f.emailRepo.emails[result.EmailID]
	assert.Equal(t, "user-1/prov-msg-1/raw.mime", email.RawMimeKey)
	assert.Equal(t, []byte("MIME-Version: 1.0\r\n"), f.storage.uploads["user-1/prov-msg-1/raw.mime"])
}

func TestProcessInbound_ContactFailureDoesNotFailIngestion(t *testing.T) {
	f := newPipelineFixture()
	f.contacts.err = errors.New("contacts table locked")

	result, err := f.service.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeIngested, result.Outcome)
}

func TestProcessInbound_NilPublisherIsSkipped(t *testing.T) {
	f := newPipelineFixture()
	log := getLogger()
	repos := &repository.Repositories{
		UserRepository:            f.userRepo,
		FolderRepository:          f.folderRepo,
		FilterRuleRepository:      f.ruleRepo,
		EmailRepository:           f.emailRepo,
		EmailAttachmentRepository: f.attachRepo,
		ContactRepository:         f.contacts,
	}
	offloader := NewBlobOffloader(f.fetcher, f.storage, f.attachRepo, log)
	svc := NewIngestionService(repos, f.filter, offloader, f.verifier, f.cleaner, f.cache, nil, log)

	result, err := svc.ProcessInbound(context.Background(), basePayload())

	require.NoError(t, err)
	assert.Equal(t, enum.IngestOutcomeIngested, result.Outcome)
}
