package dto

// InboundEmailWebhook is the payload the inbound provider POSTs for each
// delivered message. The message arrives pre-parsed: headers as a raw
// multi-value map, bodies in plaintext/HTML plus reply-stripped variants,
// and attachment content behind temporary URLs.
type InboundEmailWebhook struct {
	ID            string               `json:"_id"`
	MessageID     string               `json:"message_id"`
	Recipients    []string             `json:"recipients"`
	Headers       map[string][]string  `json:"headers"`
	Body          InboundEmailBody     `json:"body"`
	Attachments   []InboundAttachment  `json:"attachments"`
	SpfResult     string               `json:"spf_result"`
	DkimResult    bool                 `json:"dkim_result"`
	DmarcAligned  bool                 `json:"is_dmarc_aligned"`
	IsSpam        bool                 `json:"is_spam"`
	DeletionURL   string               `json:"deletion_url"`
	ValidationURL string               `json:"validation_url"`
	ProcessedAt   string               `json:"processed_at"`
}

type InboundEmailBody struct {
	Plaintext         string       `json:"plaintext"`
	StrippedPlaintext string       `json:"stripped_plaintext"`
	HTML              string       `json:"html"`
	StrippedHTML      string       `json:"stripped_html"`
	RawMime           *InboundBlob `json:"raw_mime"`
}

type InboundBlob struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
}

type InboundAttachment struct {
	Filename    string `json:"filename"`
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
	Size        int    `json:"size"`
}
