package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Integration log outcome values. The Portuguese terms are the wire contract
// shared with the reporting UI and the remote analysis service.
const (
	OutcomeSuccess = "sucesso"
	OutcomeAlert   = "alerta"
	OutcomeError   = "erro"
	OutcomeInfo    = "info"
)

// Integration log sources.
const (
	SourceAnalysis = "codex"
	SourceImport   = "importacao"
)

// IntegrationLog is the audit trail of every integration-facing operation:
// analyses, imports, remote calls. Writes to it are fire-and-forget; a
// failed audit write never fails the operation it describes.
type IntegrationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Source    string    `gorm:"type:varchar(50);not null;index" json:"source"`
	Operation string    `gorm:"type:varchar(80);not null;index" json:"operation"`
	Outcome   string    `gorm:"type:varchar(20);not null;index" json:"outcome"`
	Subject   string    `gorm:"type:varchar(255)" json:"subject"`
	Details   string    `gorm:"type:jsonb" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (l *IntegrationLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
