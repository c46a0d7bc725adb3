package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/normalize"

	"github.com/shopspring/decimal"
)

// ErrCommissionIdentity marks input that cannot form the upsert key.
var ErrCommissionIdentity = errors.New("commission is missing reference period or product")

// --- DTOs ---

// CommissionInput is one commission fact as delivered by a source system.
// Alternate field names mirror what the uncoordinated feeds actually send.
type CommissionInput struct {
	ReferencePeriod string         `json:"reference_period"`
	Referencia      string         `json:"referencia"`
	Partner         string         `json:"partner"`
	Promotora       string         `json:"promotora"`
	Product         string         `json:"product"`
	Modalidade      string         `json:"modalidade"`
	Amount          any            `json:"amount"`
	Valor           any            `json:"valor"`
	Payload         map[string]any `json:"payload"`
}

type CommissionResponse struct {
	ID              uint    `json:"id"`
	ReferencePeriod string  `json:"reference_period"`
	Partner         string  `json:"partner"`
	Product         string  `json:"product"`
	Amount          float64 `json:"amount"`
	Payload         string  `json:"payload"`
	CreatedAt       string  `json:"created_at"`
}

type ListCommissionsRequest struct {
	ReferencePeriod string
	Product         string
	Partner         string
	Limit           int
	Offset          int
}

// --- Interface ---

type CommissionService interface {
	// RegisterDetailedCommission validates, coerces and upserts one
	// commission fact in its own transaction.
	RegisterDetailedCommission(ctx context.Context, input CommissionInput) (CommissionResponse, error)
	ListDetailedCommissions(ctx context.Context, req ListCommissionsRequest) ([]CommissionResponse, int64, error)
}

type commissionService struct {
	commissionRepo repository.CommissionRepository
	txManager      repository.TransactionManager
	events         Broadcaster
}

// Broadcaster pushes "data changed" notifications to connected dashboards.
type Broadcaster interface {
	BroadcastEvent(event, scope string)
}

func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	txManager repository.TransactionManager,
	events Broadcaster,
) CommissionService {
	return &commissionService{
		commissionRepo: commissionRepo,
		txManager:      txManager,
		events:         events,
	}
}

// --- Implementation ---

func (s *commissionService) RegisterDetailedCommission(ctx context.Context, input CommissionInput) (CommissionResponse, error) {
	commission, err := buildCommission(input)
	if err != nil {
		return CommissionResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if upsertErr := s.commissionRepo.Upsert(txCtx, commission); upsertErr != nil {
			return fmt.Errorf("failed to upsert commission: %w", upsertErr)
		}
		return nil
	})
	if err != nil {
		return CommissionResponse{}, err
	}

	if s.events != nil {
		s.events.BroadcastEvent("commission-recorded", commission.ReferencePeriod)
	}

	return toCommissionResponse(*commission), nil
}

// buildCommission coerces the input into a persistable commission. The
// reference period and product make up the identity key, so their absence is
// a hard validation error; every other field degrades to a safe default.
func buildCommission(input CommissionInput) (*model.Commission, error) {
	reference := strings.TrimSpace(firstNonEmpty(input.ReferencePeriod, input.Referencia))
	product := strings.TrimSpace(firstNonEmpty(input.Product, input.Modalidade))
	partner := strings.TrimSpace(firstNonEmpty(input.Partner, input.Promotora))

	if reference == "" || product == "" {
		return nil, ErrCommissionIdentity
	}
	if partner == "" {
		partner = model.UnknownPartner
	}

	amount := input.Amount
	if amount == nil {
		amount = input.Valor
	}

	payload := ""
	if input.Payload != nil {
		if encoded, err := json.Marshal(input.Payload); err == nil {
			payload = string(encoded)
		}
	}

	return &model.Commission{
		ReferencePeriod: reference,
		Partner:         partner,
		Product:         product,
		Amount:          decimal.NewFromFloat(normalize.ToCurrency(amount)),
		Payload:         payload,
	}, nil
}

func (s *commissionService) ListDetailedCommissions(ctx context.Context, req ListCommissionsRequest) ([]CommissionResponse, int64, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	filter := repository.CommissionFilter{
		ReferencePeriod: req.ReferencePeriod,
		Product:         req.Product,
		Partner:         req.Partner,
	}

	commissions, total, err := s.commissionRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list commissions: %w", err)
	}

	result := make([]CommissionResponse, 0, len(commissions))
	for _, c := range commissions {
		result = append(result, toCommissionResponse(c))
	}
	return result, total, nil
}

// --- Helpers ---

func toCommissionResponse(c model.Commission) CommissionResponse {
	amount, _ := c.Amount.Float64()
	return CommissionResponse{
		ID:              c.ID,
		ReferencePeriod: c.ReferencePeriod,
		Partner:         c.Partner,
		Product:         c.Product,
		Amount:          amount,
		Payload:         c.Payload,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
