package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/config"
	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/models"
)

type Repositories struct {
	UserRepository            interfaces.UserRepository
	FolderRepository          interfaces.FolderRepository
	FilterRuleRepository      interfaces.FilterRuleRepository
	EmailRepository           interfaces.EmailRepository
	EmailAttachmentRepository interfaces.EmailAttachmentRepository
	ContactRepository         interfaces.ContactRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		UserRepository:            NewUserRepository(db),
		FolderRepository:          NewFolderRepository(db),
		FilterRuleRepository:      NewFilterRuleRepository(db),
		EmailRepository:           NewEmailRepository(db),
		EmailAttachmentRepository: NewEmailAttachmentRepository(db),
		ContactRepository:         NewContactRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, gormDB *gorm.DB) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = gormDB.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.Email{},
		&models.EmailAttachment{},
		&models.Contact{},
		&models.FilterRule{},
	)

	db.Close()

	db, _ = gormDB.DB()
	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
