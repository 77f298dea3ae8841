package enum

// IngestOutcome describes how the pipeline disposed of an inbound delivery.
type IngestOutcome string

const (
	IngestOutcomeIngested         IngestOutcome = "ingested"
	IngestOutcomeDuplicate        IngestOutcome = "duplicate"
	IngestOutcomeUnknownRecipient IngestOutcome = "unknown_recipient"
)

func (t IngestOutcome) String() string {
	return string(t)
}
