package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// recordInsertChunk bounds batch inserts so one oversized file cannot blow a
// single statement.
const recordInsertChunk = 500

type ImportRepository interface {
	CreateBatch(ctx context.Context, batch *model.ImportBatch) error
	CreateRecords(ctx context.Context, records []model.ImportedRecord) error
	ListBatches(ctx context.Context, page, limit int) ([]model.ImportBatch, int64, error)
	FindBatchesFiltered(ctx context.Context, filter RowFilter) ([]model.ImportBatch, error)
	FindRecordsFiltered(ctx context.Context, filter RowFilter) ([]model.ImportedRecord, error)
}

type importRepository struct {
	db *gorm.DB
}

func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) CreateBatch(ctx context.Context, batch *model.ImportBatch) error {
	return GetDB(ctx, r.db).Create(batch).Error
}

func (r *importRepository) CreateRecords(ctx context.Context, records []model.ImportedRecord) error {
	if len(records) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(records, recordInsertChunk).Error
}

func (r *importRepository) ListBatches(ctx context.Context, page, limit int) ([]model.ImportBatch, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.ImportBatch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []model.ImportBatch
	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *importRepository) FindBatchesFiltered(ctx context.Context, filter RowFilter) ([]model.ImportBatch, error) {
	db := GetDB(ctx, r.db)

	if filter.Partner != "" {
		db = db.Where("partner = ?", filter.Partner)
	}
	if filter.StartDate != "" {
		db = db.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("created_at <= ?", filter.EndDate+" 23:59:59")
	}

	var batches []model.ImportBatch
	if err := db.Order("created_at desc").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *importRepository) FindRecordsFiltered(ctx context.Context, filter RowFilter) ([]model.ImportedRecord, error) {
	db := GetDB(ctx, r.db)

	if filter.Partner != "" {
		db = db.Where("partner = ?", filter.Partner)
	}
	if filter.Product != "" {
		db = db.Where("product = ?", filter.Product)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != "" {
		db = db.Where("operation_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("operation_date <= ?", filter.EndDate+" 23:59:59")
	}

	var records []model.ImportedRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
