package ingestion

// ResolveThreadID derives the conversation identifier for a message.
// The first reference is the oldest ancestor, i.e. the conversation root;
// anchoring on it keeps forwards and replies that only set In-Reply-To in
// one thread. Pure function: the result is matched against stored emails
// by equality only, never re-derived retroactively.
func ResolveThreadID(messageID, inReplyTo string, references []string) string {
	if len(references) > 0 {
		return references[0]
	}
	if inReplyTo != "" {
		return inReplyTo
	}
	return messageID
}
