package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportBatch records one ingestion run of an external file. Immutable once
// written; only the ingestion path creates them.
type ImportBatch struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Filename        string          `gorm:"type:varchar(255);not null" json:"filename"`
	Partner         string          `gorm:"type:varchar(120);index" json:"partner"`
	TotalRecords    int             `gorm:"not null;default:0" json:"total_records"`
	TotalVolume     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_volume"`
	TotalCommission decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_commission"`
	Metadata        string          `gorm:"type:jsonb" json:"metadata"` // insights, alerts, analysis source, actor
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

func (b *ImportBatch) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ImportedRecord is one normalized row of an import batch, after field
// resolution mapped the source's column names into the canonical shape.
type ImportedRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID          uuid.UUID       `gorm:"type:uuid;index" json:"batch_id"`
	Partner          string          `gorm:"type:varchar(120);index" json:"partner"`
	ClientName       string          `gorm:"type:varchar(255)" json:"client_name"`
	Document         string          `gorm:"type:varchar(20);index" json:"document"`
	ContractNumber   string          `gorm:"type:varchar(80)" json:"contract_number"`
	Product          string          `gorm:"type:varchar(160)" json:"product"`
	Bank             string          `gorm:"type:varchar(120)" json:"bank"`
	Status           string          `gorm:"type:varchar(60)" json:"status"`
	GrossVolume      decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"gross_volume"`
	NetVolume        decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"net_volume"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"commission_amount"`
	OperationDate    *time.Time      `gorm:"index" json:"operation_date"`
	Raw              string          `gorm:"type:jsonb" json:"raw"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (r *ImportedRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
