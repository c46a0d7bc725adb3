package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownPartner is the sentinel used when a record carries no partner at all.
// The aggregator groups such records under the same bucket.
const UnknownPartner = "Desconhecida"

// Commission is one reconciled financial fact. The (reference_period, partner,
// product) triple is the record identity: re-importing the same period must
// update amount/payload in place, never create a second row. The numeric ID
// only exists to give listings a stable, monotonically increasing order.
type Commission struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ReferencePeriod string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_commission_identity,priority:1" json:"reference_period"`
	Partner         string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_commission_identity,priority:2" json:"partner"`
	Product         string          `gorm:"type:varchar(160);not null;uniqueIndex:idx_commission_identity,priority:3" json:"product"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amount"` // negative adjustments allowed
	Payload         string          `gorm:"type:jsonb" json:"payload"`                           // opaque source-specific attachment
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
