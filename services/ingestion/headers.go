package ingestion

import (
	"net/mail"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// InboundEnvelope is the structured form of a message's routing headers,
// derived once per inbound payload and immutable afterwards.
type InboundEnvelope struct {
	FromEmail  string
	FromName   string
	ToEmail    string
	ToName     string
	Subject    string
	MessageID  string
	InReplyTo  string
	References []string
}

// ParseEnvelope builds an envelope from a raw multi-value header map.
// Header names match case-insensitively. Malformed addresses degrade to
// the raw string with no display name; parsing never fails.
func ParseEnvelope(headers map[string][]string) *InboundEnvelope {
	lookup := make(map[string][]string, len(headers))
	for name, values := range headers {
		lookup[strings.ToLower(name)] = values
	}

	firstValue := func(name string) string {
		values := lookup[name]
		if len(values) == 0 {
			return ""
		}
		return strings.TrimSpace(values[0])
	}

	envelope := &InboundEnvelope{
		Subject:   firstValue("subject"),
		MessageID: utils.NormalizeMessageID(firstValue("message-id")),
		InReplyTo: utils.NormalizeMessageID(firstValue("in-reply-to")),
	}

	envelope.FromEmail, envelope.FromName = parseAddress(firstValue("from"))
	envelope.ToEmail, envelope.ToName = parseAddress(firstValue("to"))

	envelope.References = parseReferences(firstValue("references"))

	return envelope
}

// parseAddress handles "Display Name <address>" and bare-address forms.
// Anything unparseable is kept verbatim as the email with no name.
func parseAddress(raw string) (email, name string) {
	if raw == "" {
		return "", ""
	}

	address, err := mail.ParseAddress(raw)
	if err != nil {
		return raw, ""
	}

	email = address.Address
	name = address.Name

	validation := mailvalidate.ValidateEmailSyntax(email)
	if validation.IsValid {
		email = validation.User + "@" + validation.Domain
	}

	return email, name
}

func parseReferences(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Fields(raw)
	references := make([]string, 0, len(parts))
	for _, part := range parts {
		id := utils.NormalizeMessageID(part)
		if id != "" {
			references = append(references, id)
		}
	}
	return references
}
