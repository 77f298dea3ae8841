package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// EmailAttachment is attachment metadata for a stored email. The row is
// only created once the attachment bytes are durably in blob storage, so
// a visible row always has a resolvable StorageKey.
type EmailAttachment struct {
	ID          string `gorm:"column:id;type:varchar(50);primaryKey"`
	EmailID     string `gorm:"column:email_id;type:varchar(50);index;not null"`
	Filename    string `gorm:"column:filename;type:varchar(500)"`
	ContentType string `gorm:"column:content_type;type:varchar(255)"`
	ContentID   string `gorm:"column:content_id;type:varchar(255)"`
	Size        int    `gorm:"column:size;default:0"`
	StorageKey  string `gorm:"column:storage_key;type:varchar(1000)"`
	SourceURL   string `gorm:"column:source_url;type:varchar(2000)"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (EmailAttachment) TableName() string {
	return "email_attachments"
}

func (e *EmailAttachment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("file", 12)
	}
	e.CreatedAt = utils.Now()
	return nil
}
