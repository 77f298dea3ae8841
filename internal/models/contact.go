package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// Contact tracks correspondents per user, unique on (user_id, email).
// The pipeline only ever upserts and increments, never deletes.
type Contact struct {
	ID              string     `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID          string     `gorm:"column:user_id;type:varchar(50);uniqueIndex:idx_contacts_user_email;not null"`
	Email           string     `gorm:"column:email;type:varchar(255);uniqueIndex:idx_contacts_user_email;not null"`
	FullName        string     `gorm:"column:full_name;type:varchar(255)"`
	ContactCount    int        `gorm:"column:contact_count;default:0"`
	LastContactedAt *time.Time `gorm:"column:last_contacted_at;type:timestamp"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("cont", 16)
	}
	c.CreatedAt = utils.Now()
	return nil
}
