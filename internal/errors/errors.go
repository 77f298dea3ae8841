package errors

import "github.com/pkg/errors"

// Ingestion error taxonomy. The webhook handler maps these onto HTTP
// statuses: authentication failures are rejected with 401, transient
// failures get a retriable 5xx so the provider redelivers, everything
// else is acknowledged to stop retry storms.
var (
	ErrWebhookAuthFailed = errors.New("webhook authenticity check failed")
	ErrUnknownRecipient  = errors.New("no user for recipient address")
	ErrDuplicateDelivery = errors.New("message already ingested")
	ErrAttachmentFetch   = errors.New("attachment fetch failed")
)

// transientError marks failures the provider should retry (database or
// blob store unavailable). Wrap keeps the cause chain intact.
type transientError struct {
	cause error
}

func (e *transientError) Error() string {
	return "transient: " + e.cause.Error()
}

func (e *transientError) Unwrap() error {
	return e.cause
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: err}
}

func Transientf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: errors.Wrapf(err, format, args...)}
}

func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
