package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/utils"
)

// Folder is a per-user mail folder. System folders (inbox, spam, trash)
// are provisioned at signup; the ingestion pipeline only reads them.
type Folder struct {
	ID        string          `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID    string          `gorm:"column:user_id;type:varchar(50);index:idx_folders_user_type;not null"`
	Name      string          `gorm:"column:name;type:varchar(255);not null"`
	Type      enum.FolderType `gorm:"column:type;type:varchar(50);index:idx_folders_user_type;not null"`
	Icon      string          `gorm:"column:icon;type:varchar(50)"`
	Color     string          `gorm:"column:color;type:varchar(20)"`
	SortOrder int             `gorm:"column:sort_order;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Folder) TableName() string {
	return "folders"
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = utils.GenerateNanoIDWithPrefix("fldr", 16)
	}
	f.CreatedAt = utils.Now()
	return nil
}
