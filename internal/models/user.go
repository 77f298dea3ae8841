package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// User is the mailbox owner. Account management and authentication live
// outside this service; ingestion only resolves recipients against it.
type User struct {
	ID       string `gorm:"column:id;type:varchar(50);primaryKey"`
	Email    string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	FullName string `gorm:"column:full_name;type:varchar(255)"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateNanoIDWithPrefix("user", 16)
	}
	u.CreatedAt = utils.Now()
	return nil
}
