package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contract is an individual deal outcome, keyed by the contract number the
// source system assigned. The ingestion path upserts them; re-importing a
// report updates the existing rows instead of duplicating them.
type Contract struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNumber   string          `gorm:"type:varchar(80);uniqueIndex" json:"contract_number"`
	ClientName       string          `gorm:"type:varchar(255)" json:"client_name"`
	Partner          string          `gorm:"type:varchar(120);index" json:"partner"`
	Product          string          `gorm:"type:varchar(160)" json:"product"`
	Bank             string          `gorm:"type:varchar(120)" json:"bank"`
	Status           string          `gorm:"type:varchar(60);index" json:"status"`
	GrossVolume      decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"gross_volume"`
	NetVolume        decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"net_volume"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"commission_amount"`
	OperationDate    *time.Time      `gorm:"index" json:"operation_date"`
	Raw              string          `gorm:"type:jsonb" json:"raw"` // free-form source attachment
	CreatedAt        time.Time       `json:"created_at"`
}

func (c *Contract) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
