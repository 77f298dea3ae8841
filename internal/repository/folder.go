package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type folderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) interfaces.FolderRepository {
	return &folderRepository{
		db: db,
	}
}

func (r *folderRepository) GetByID(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "folderRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	var folder models.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, folderID).
		First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) GetByType(ctx context.Context, userID string, folderType enum.FolderType) (*models.Folder, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "folderRepository.GetByType")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagUserId(span, userID)

	var folder models.Folder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, folderType).
		Order("sort_order ASC").
		First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &folder, nil
}
