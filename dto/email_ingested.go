package dto

import "time"

// EmailIngested is published after an inbound message is fully ingested.
// Downstream consumers (notification fan-out, indexing) react to it; the
// pipeline itself never consumes.
type EmailIngested struct {
	EmailID        string    `json:"emailId"`
	UserID         string    `json:"userId"`
	FolderID       string    `json:"folderId"`
	ThreadID       string    `json:"threadId"`
	FromEmail      string    `json:"fromEmail"`
	Subject        string    `json:"subject"`
	IsSpam         bool      `json:"isSpam"`
	HasAttachments bool      `json:"hasAttachments"`
	ReceivedAt     time.Time `json:"receivedAt"`
}
