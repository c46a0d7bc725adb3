package repository

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository interface {
	// Upsert writes the contract keyed by its contract number. The caller
	// must not pass an empty contract number; rows without one are not
	// reconcilable and should be skipped upstream.
	Upsert(ctx context.Context, contract *model.Contract) error
	FindFiltered(ctx context.Context, filter RowFilter) ([]model.Contract, error)
}

type contractRepository struct {
	db   *gorm.DB
	caps UpsertCapabilities
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return NewContractRepositoryWithCapabilities(db, DetectUpsertCapabilities(db))
}

func NewContractRepositoryWithCapabilities(db *gorm.DB, caps UpsertCapabilities) ContractRepository {
	return &contractRepository{db: db, caps: caps}
}

var contractIdentity = []clause.Column{{Name: "contract_number"}}

var contractUpdateColumns = []string{
	"client_name", "partner", "product", "bank", "status",
	"gross_volume", "net_volume", "commission_amount", "operation_date", "raw",
}

func (r *contractRepository) Upsert(ctx context.Context, contract *model.Contract) error {
	db := GetDB(ctx, r.db)

	switch {
	case r.caps.NativeUpsert:
		return db.Clauses(clause.OnConflict{
			DoUpdates: clause.AssignmentColumns(contractUpdateColumns),
		}).Create(contract).Error

	case r.caps.MergeOnConflict:
		return db.Clauses(clause.OnConflict{
			Columns:   contractIdentity,
			DoUpdates: clause.AssignmentColumns(contractUpdateColumns),
		}).Create(contract).Error

	default:
		return r.upsertReadCheckWrite(db, contract)
	}
}

func (r *contractRepository) upsertReadCheckWrite(db *gorm.DB, contract *model.Contract) error {
	var existing model.Contract
	err := db.Where("contract_number = ?", contract.ContractNumber).First(&existing).Error

	switch {
	case err == nil:
		return r.updateByNumber(db, contract)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if createErr := db.Create(contract).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return r.updateByNumber(db, contract)
			}
			return createErr
		}
		return nil
	default:
		return fmt.Errorf("failed to look up contract number: %w", err)
	}
}

func (r *contractRepository) updateByNumber(db *gorm.DB, contract *model.Contract) error {
	return db.Model(&model.Contract{}).Where("contract_number = ?", contract.ContractNumber).Updates(map[string]any{
		"client_name":       contract.ClientName,
		"partner":           contract.Partner,
		"product":           contract.Product,
		"bank":              contract.Bank,
		"status":            contract.Status,
		"gross_volume":      contract.GrossVolume,
		"net_volume":        contract.NetVolume,
		"commission_amount": contract.CommissionAmount,
		"operation_date":    contract.OperationDate,
		"raw":               contract.Raw,
	}).Error
}

func (r *contractRepository) FindFiltered(ctx context.Context, filter RowFilter) ([]model.Contract, error) {
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

	var contracts []model.Contract
	if err := db.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
