package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

// OperationRepository persists the operations log.
type OperationRepository interface {
	Create(ctx context.Context, entry *model.OperationLog) error
	List(ctx context.Context, page, limit int) ([]model.OperationLog, int64, error)
}

type operationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &operationRepository{db: db}
}

func (r *operationRepository) Create(ctx context.Context, entry *model.OperationLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *operationRepository) List(ctx context.Context, page, limit int) ([]model.OperationLog, int64, error) {
	var entries []model.OperationLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.OperationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
