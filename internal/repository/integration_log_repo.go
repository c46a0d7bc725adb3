package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// IntegrationLogFilter narrows audit listings.
type IntegrationLogFilter struct {
	Source  string
	Outcome string
}

type IntegrationLogRepository interface {
	Log(ctx context.Context, entry *model.IntegrationLog) error
	List(ctx context.Context, filter IntegrationLogFilter, page, limit int) ([]model.IntegrationLog, int64, error)
}

type integrationLogRepository struct {
	db *gorm.DB
}

func NewIntegrationLogRepository(db *gorm.DB) IntegrationLogRepository {
	return &integrationLogRepository{db: db}
}

func (r *integrationLogRepository) Log(ctx context.Context, entry *model.IntegrationLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *integrationLogRepository) List(ctx context.Context, filter IntegrationLogFilter, page, limit int) ([]model.IntegrationLog, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.IntegrationLog{})

	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	if filter.Outcome != "" {
		db = db.Where("outcome = ?", filter.Outcome)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.IntegrationLog
	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
