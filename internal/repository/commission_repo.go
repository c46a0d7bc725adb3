package repository

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertCapabilities describes which conflict-resolution primitives the
// storage engine offers. Detected once at construction from the dialector,
// never inspected per call.
type UpsertCapabilities struct {
	// NativeUpsert: the engine resolves duplicate keys by itself
	// (MySQL ON DUPLICATE KEY UPDATE), no conflict target needed.
	NativeUpsert bool
	// MergeOnConflict: the engine merges named columns on an explicit
	// identity conflict (Postgres/SQLite ON CONFLICT ... DO UPDATE).
	MergeOnConflict bool
}

// DetectUpsertCapabilities maps the connected dialector to its conflict
// primitives. Unknown engines get neither and fall back to read-check-write.
func DetectUpsertCapabilities(db *gorm.DB) UpsertCapabilities {
	switch db.Dialector.Name() {
	case "mysql":
		return UpsertCapabilities{NativeUpsert: true}
	case "postgres", "sqlite":
		return UpsertCapabilities{MergeOnConflict: true}
	default:
		return UpsertCapabilities{}
	}
}

// CommissionFilter narrows commission listings.
type CommissionFilter struct {
	ReferencePeriod string
	Product         string
	Partner         string
}

// RowFilter narrows the dashboard source collections before aggregation.
// Dates are inclusive YYYY-MM-DD bounds.
type RowFilter struct {
	Partner   string
	Product   string
	Status    string
	StartDate string
	EndDate   string
}

type CommissionRepository interface {
	// Upsert writes the commission within the caller's transaction with the
	// at-most-one-row-per-identity guarantee. On the fallback path this is
	// only safe against concurrent transactions if the store serializes
	// writers on the identity key.
	Upsert(ctx context.Context, commission *model.Commission) error
	List(ctx context.Context, filter CommissionFilter, limit, offset int) ([]model.Commission, int64, error)
	FindFiltered(ctx context.Context, filter RowFilter) ([]model.Commission, error)
}

type commissionRepository struct {
	db   *gorm.DB
	caps UpsertCapabilities
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return NewCommissionRepositoryWithCapabilities(db, DetectUpsertCapabilities(db))
}

// NewCommissionRepositoryWithCapabilities pins the conflict strategy instead
// of detecting it, for stores whose dialector name says nothing about their
// actual upsert support.
func NewCommissionRepositoryWithCapabilities(db *gorm.DB, caps UpsertCapabilities) CommissionRepository {
	return &commissionRepository{db: db, caps: caps}
}

var commissionIdentity = []clause.Column{
	{Name: "reference_period"},
	{Name: "partner"},
	{Name: "product"},
}

func (r *commissionRepository) Upsert(ctx context.Context, commission *model.Commission) error {
	db := GetDB(ctx, r.db)

	switch {
	case r.caps.NativeUpsert:
		return db.Clauses(clause.OnConflict{
			DoUpdates: clause.AssignmentColumns([]string{"amount", "payload", "updated_at"}),
		}).Create(commission).Error

	case r.caps.MergeOnConflict:
		return db.Clauses(clause.OnConflict{
			Columns:   commissionIdentity,
			DoUpdates: clause.AssignmentColumns([]string{"amount", "payload", "updated_at"}),
		}).Create(commission).Error

	default:
		return r.upsertReadCheckWrite(db, commission)
	}
}

// upsertReadCheckWrite looks the identity up inside the same transaction and
// updates or inserts accordingly. An insert that still hits the unique index
// (row appeared after the read) falls back to the update once more.
func (r *commissionRepository) upsertReadCheckWrite(db *gorm.DB, commission *model.Commission) error {
	var existing model.Commission
	err := db.Where(
		"reference_period = ? AND partner = ? AND product = ?",
		commission.ReferencePeriod, commission.Partner, commission.Product,
	).First(&existing).Error

	switch {
	case err == nil:
		return r.updateExisting(db, existing.ID, commission)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if createErr := db.Create(commission).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return r.updateByIdentity(db, commission)
			}
			return createErr
		}
		return nil
	default:
		return fmt.Errorf("failed to look up commission identity: %w", err)
	}
}

func (r *commissionRepository) updateExisting(db *gorm.DB, id uint, commission *model.Commission) error {
	return db.Model(&model.Commission{}).Where("id = ?", id).Updates(map[string]any{
		"amount":  commission.Amount,
		"payload": commission.Payload,
	}).Error
}

func (r *commissionRepository) updateByIdentity(db *gorm.DB, commission *model.Commission) error {
	return db.Model(&model.Commission{}).Where(
		"reference_period = ? AND partner = ? AND product = ?",
		commission.ReferencePeriod, commission.Partner, commission.Product,
	).Updates(map[string]any{
		"amount":  commission.Amount,
		"payload": commission.Payload,
	}).Error
}

func (r *commissionRepository) List(ctx context.Context, filter CommissionFilter, limit, offset int) ([]model.Commission, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Commission{})

	if filter.ReferencePeriod != "" {
		db = db.Where("reference_period = ?", filter.ReferencePeriod)
	}
	if filter.Product != "" {
		db = db.Where("product = ?", filter.Product)
	}
	if filter.Partner != "" {
		db = db.Where("partner = ?", filter.Partner)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var commissions []model.Commission
	if err := db.Order("id desc").Limit(limit).Offset(offset).Find(&commissions).Error; err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}

func (r *commissionRepository) FindFiltered(ctx context.Context, filter RowFilter) ([]model.Commission, error) {
	db := GetDB(ctx, r.db)

	if filter.Partner != "" {
		db = db.Where("partner = ?", filter.Partner)
	}
	if filter.Product != "" {
		db = db.Where("product = ?", filter.Product)
	}
	if filter.StartDate != "" {
		db = db.Where("reference_period >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("reference_period <= ?", filter.EndDate)
	}

	var commissions []model.Commission
	if err := db.Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}
