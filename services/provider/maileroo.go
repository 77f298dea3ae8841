package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/mailroomhq/mailroom/config"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/tracing"

	mailroomerrors "github.com/mailroomhq/mailroom/internal/errors"
)

// maxBlobSize caps a single temporary-URL download (raw MIME or
// attachment) at 50MB.
const maxBlobSize = 50 * 1024 * 1024

// MailerooClient talks to the inbound delivery provider: webhook
// validation callbacks, temporary-URL content downloads and post-ingest
// cleanup. It implements interfaces.WebhookVerifier, interfaces.BlobFetcher
// and interfaces.InboundCleaner.
type MailerooClient struct {
	httpClient        *http.Client
	validationTimeout time.Duration
	fetchTimeout      time.Duration
	log               logger.Logger
}

func NewMailerooClient(cfg *config.MailerooConfig, log logger.Logger) *MailerooClient {
	return &MailerooClient{
		httpClient:        &http.Client{},
		validationTimeout: time.Duration(cfg.ValidationTimeoutSeconds) * time.Second,
		fetchTimeout:      time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		log:               log,
	}
}

// Verify calls the payload's validation URL. The provider answers
// {"success": true} only for deliveries it really made; anything else,
// including network failure, counts as an authenticity failure.
func (c *MailerooClient) Verify(ctx context.Context, validationURL string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailerooClient.Verify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if validationURL == "" {
		return mailroomerrors.ErrWebhookAuthFailed
	}

	ctx, cancel := context.WithTimeout(ctx, c.validationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validationURL, nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return mailroomerrors.ErrWebhookAuthFailed
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return mailroomerrors.ErrWebhookAuthFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.SetTag("http.status_code", resp.StatusCode)
		return mailroomerrors.ErrWebhookAuthFailed
	}

	var validation struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		tracing.TraceErr(span, err)
		return mailroomerrors.ErrWebhookAuthFailed
	}
	if !validation.Success {
		return mailroomerrors.ErrWebhookAuthFailed
	}

	return nil
}

// Fetch downloads message content from a temporary URL. Each fetch is
// bounded by the configured timeout; a timed-out attachment is treated as
// missing by the caller rather than blocking the pipeline.
func (c *MailerooClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailerooClient.Fetch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if url == "" {
		return nil, errors.New("empty blob url")
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(mailroomerrors.ErrAttachmentFetch, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.SetTag("http.status_code", resp.StatusCode)
		return nil, errors.Wrapf(mailroomerrors.ErrAttachmentFetch, "unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobSize))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(mailroomerrors.ErrAttachmentFetch, err.Error())
	}

	return data, nil
}

// DeleteInbound asks the provider to drop its temporary copy of the
// message. Best effort; the caller logs and moves on.
func (c *MailerooClient) DeleteInbound(ctx context.Context, deletionURL string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailerooClient.DeleteInbound")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if deletionURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.validationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deletionURL, nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetTag("http.status_code", resp.StatusCode)
		return errors.Errorf("deletion call returned status %d", resp.StatusCode)
	}

	return nil
}
