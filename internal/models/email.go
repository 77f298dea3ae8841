package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// Email represents an inbound message stored in a user's mailbox
type Email struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID   string `gorm:"column:user_id;type:varchar(50);index;uniqueIndex:idx_emails_user_provider_msg;not null"`
	FolderID string `gorm:"column:folder_id;type:varchar(50);index;not null"`

	// Threading identity. ProviderMessageID is the delivery provider's own
	// id and the natural dedup key for at-least-once webhook delivery.
	MessageID         string         `gorm:"column:message_id;type:varchar(255);index;not null"`
	ProviderMessageID string         `gorm:"column:provider_message_id;type:varchar(255);uniqueIndex:idx_emails_user_provider_msg;not null"`
	ThreadID          string         `gorm:"column:thread_id;type:varchar(255);index"`
	InReplyTo         string         `gorm:"column:in_reply_to;type:varchar(255)"`
	References        pq.StringArray `gorm:"column:references;type:text[]"`

	// Envelope
	FromAddress  string `gorm:"column:from_address;type:varchar(255);index"`
	FromName     string `gorm:"column:from_name;type:varchar(255)"`
	ToAddress    string `gorm:"column:to_address;type:varchar(255)"`
	ToName       string `gorm:"column:to_name;type:varchar(255)"`
	Subject      string `gorm:"column:subject;type:varchar(1000)"`
	CleanSubject string `gorm:"column:clean_subject;type:varchar(1000)"`

	// Content
	BodyText     string `gorm:"column:body_text;type:text"`
	BodyHTML     string `gorm:"column:body_html;type:text"`
	StrippedText string `gorm:"column:stripped_text;type:text"`
	StrippedHTML string `gorm:"column:stripped_html;type:text"`

	// State
	HasAttachments bool           `gorm:"column:has_attachments;default:false"`
	IsSpam         bool           `gorm:"column:is_spam;default:false"`
	IsRead         bool           `gorm:"column:is_read;default:false"`
	Labels         pq.StringArray `gorm:"column:labels;type:text[]"`

	// Blob offload
	RawMimeKey string `gorm:"column:raw_mime_key;type:varchar(1000)"`

	// Provider authentication verdicts
	SpfResult    string `gorm:"column:spf_result;type:varchar(50)"`
	DkimPassed   bool   `gorm:"column:dkim_passed;default:false"`
	DmarcAligned bool   `gorm:"column:dmarc_aligned;default:false"`

	ReceivedAt *time.Time     `gorm:"column:received_at;type:timestamp;index"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Email) TableName() string {
	return "emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	e.CreatedAt = utils.Now()
	return nil
}
