package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"backend/internal/fields"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/normalize"

	"go.uber.org/zap"
)

// DefaultAnalysisTimeout bounds the remote analysis call; a slow endpoint
// falls through to the local heuristic instead of stalling ingestion.
const DefaultAnalysisTimeout = 12 * time.Second

const lowCommissionRateThreshold = 2.0 // percent

// --- DTOs ---

// ReportBatch is one report handed to the analyzer: the raw rows exactly as
// the source produced them, column names and all.
type ReportBatch struct {
	Filename string           `json:"filename"`
	Partner  string           `json:"promotora"`
	Rows     []map[string]any `json:"linhas"`
}

// AnalysisResult is the outcome of analyzing a batch, from the remote
// service when reachable or from the local heuristic otherwise.
type AnalysisResult struct {
	Filename        string   `json:"filename"`
	Partner         string   `json:"partner"`
	Source          string   `json:"source"`
	TotalRecords    int      `json:"total_records"`
	TotalVolume     float64  `json:"total_volume"`
	TotalCommission float64  `json:"total_commission"`
	Insights        []string `json:"insights"`
	Alerts          []string `json:"alerts"`
	Details         any      `json:"details,omitempty"`
}

// remoteAnalysisBody tolerates both of the response shapes the analysis
// service has been seen to produce, with camelCase and snake_case totals.
type remoteAnalysisBody struct {
	Dados *remoteAnalysisData `json:"dados"`
	remoteAnalysisData
}

type remoteAnalysisData struct {
	TotalRegistros      any    `json:"totalRegistros"`
	TotalRegistrosSnake any    `json:"total_registros"`
	TotalVolume         any    `json:"totalVolume"`
	TotalVolumeSnake    any    `json:"total_volume"`
	TotalComissao       any    `json:"totalComissao"`
	TotalComissaoSnake  any    `json:"total_comissao"`
	Insights            any    `json:"insights"`
	Alertas             any    `json:"alertas"`
	Fonte               string `json:"fonte"`
}

// AnalysisConfig configures the remote analysis integration. An empty URL
// disables the remote path entirely.
type AnalysisConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// --- Interface ---

type AnalysisService interface {
	// AnalyzeReport never fails because of the remote service: any remote
	// error degrades to the local heuristic path.
	AnalyzeReport(ctx context.Context, batch ReportBatch) AnalysisResult
}

type analysisService struct {
	config  AnalysisConfig
	client  *http.Client
	logRepo repository.IntegrationLogRepository
	aliases fields.Aliases
	log     *zap.Logger
}

func NewAnalysisService(
	config AnalysisConfig,
	logRepo repository.IntegrationLogRepository,
	log *zap.Logger,
) AnalysisService {
	if config.Timeout <= 0 {
		config.Timeout = DefaultAnalysisTimeout
	}
	return &analysisService{
		config:  config,
		client:  &http.Client{},
		logRepo: logRepo,
		aliases: fields.DefaultAliases,
		log:     log,
	}
}

// --- Implementation ---

func (s *analysisService) AnalyzeReport(ctx context.Context, batch ReportBatch) AnalysisResult {
	if batch.Rows == nil {
		batch.Rows = []map[string]any{}
	}

	result, ok := s.analyzeRemote(ctx, batch)
	if !ok {
		result = s.analyzeHeuristic(batch)
	}

	s.audit(ctx, batch, result)
	return result
}

func (s *analysisService) analyzeRemote(ctx context.Context, batch ReportBatch) (AnalysisResult, bool) {
	if s.config.URL == "" {
		return AnalysisResult{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	payload, err := json.Marshal(batch)
	if err != nil {
		s.log.Warn("failed to encode analysis payload", zap.Error(err))
		return AnalysisResult{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		s.log.Warn("failed to build analysis request", zap.Error(err))
		return AnalysisResult{}, false
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("analysis service unreachable, falling back to heuristic",
			zap.String("filename", batch.Filename), zap.Error(err))
		return AnalysisResult{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("analysis service returned non-2xx, falling back to heuristic",
			zap.String("filename", batch.Filename), zap.Int("status", resp.StatusCode))
		return AnalysisResult{}, false
	}

	var body remoteAnalysisBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		s.log.Warn("analysis service returned malformed body, falling back to heuristic",
			zap.String("filename", batch.Filename), zap.Error(err))
		return AnalysisResult{}, false
	}

	data := body.remoteAnalysisData
	if body.Dados != nil {
		data = *body.Dados
	}

	totalRecords := int(normalize.ToNumber(coalesce(data.TotalRegistros, data.TotalRegistrosSnake)))
	if totalRecords == 0 {
		totalRecords = len(batch.Rows)
	}

	source := data.Fonte
	if source == "" {
		source = "codex-api"
	}

	return AnalysisResult{
		Filename:        batch.Filename,
		Partner:         batch.Partner,
		Source:          source,
		TotalRecords:    totalRecords,
		TotalVolume:     normalize.ToCurrency(coalesce(data.TotalVolume, data.TotalVolumeSnake)),
		TotalCommission: normalize.ToCurrency(coalesce(data.TotalComissao, data.TotalComissaoSnake)),
		Insights:        toStringSlice(data.Insights),
		Alerts:          toStringSlice(data.Alertas),
		Details:         data,
	}, true
}

// analyzeHeuristic computes descriptive statistics locally: per-product
// volume/commission grouping, a top-product insight and an alert when the
// batch exposes no recognizable money columns at all.
func (s *analysisService) analyzeHeuristic(batch ReportBatch) AnalysisResult {
	insights := []string{}
	alerts := []string{}

	type productTotals struct {
		product    string
		volume     float64
		commission float64
	}

	totalsByProduct := map[string]*productTotals{}
	order := []string{}
	var totalVolume, totalCommission float64

	for _, row := range batch.Rows {
		product := fields.ResolveString(row, s.aliases.Product)
		if product == "" {
			product = "Desconhecido"
		}

		volume := fields.ResolveNumber(row, s.aliases.NetVolume)
		commission := fields.ResolveNumber(row, s.aliases.Commission)
		totalVolume += volume
		totalCommission += commission

		entry, ok := totalsByProduct[product]
		if !ok {
			entry = &productTotals{product: product}
			totalsByProduct[product] = entry
			order = append(order, product)
		}
		entry.volume += volume
		entry.commission += commission
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totalsByProduct[order[i]].volume > totalsByProduct[order[j]].volume
	})

	if len(order) > 0 {
		top := totalsByProduct[order[0]]
		insights = append(insights, fmt.Sprintf(
			"Produto de maior volume: %s (R$ %.2f)", top.product, top.volume))
	}

	if totalVolume == 0 && totalCommission == 0 {
		alerts = append(alerts,
			"Nao foi possivel identificar valores de volume ou comissao nas colunas do relatorio.")
	} else {
		insights = append(insights, fmt.Sprintf("Volume total identificado: R$ %.2f", totalVolume))
		insights = append(insights, fmt.Sprintf("Comissoes estimadas: R$ %.2f", totalCommission))

		averageRate := 0.0
		if totalVolume > 0 {
			averageRate = totalCommission / totalVolume * 100
		}
		insights = append(insights, fmt.Sprintf("Ticket medio de comissao: %.2f%%", averageRate))

		if averageRate < lowCommissionRateThreshold {
			alerts = append(alerts,
				"Comissao media abaixo de 2%. Verifique possiveis divergencias de repasse.")
		}
	}

	details := map[string]any{}
	volumeByProduct := make([]map[string]any, 0, len(order))
	commissionByProduct := make([]map[string]any, 0, len(order))
	for _, product := range order {
		entry := totalsByProduct[product]
		volumeByProduct = append(volumeByProduct, map[string]any{
			"produto": product, "volume": normalize.ToCurrency(entry.volume),
		})
		commissionByProduct = append(commissionByProduct, map[string]any{
			"produto": product, "comissao": normalize.ToCurrency(entry.commission),
		})
	}
	details["volumePorProduto"] = volumeByProduct
	details["comissaoPorProduto"] = commissionByProduct

	return AnalysisResult{
		Filename:        batch.Filename,
		Partner:         batch.Partner,
		Source:          "heuristica-local",
		TotalRecords:    len(batch.Rows),
		TotalVolume:     normalize.ToCurrency(totalVolume),
		TotalCommission: normalize.ToCurrency(totalCommission),
		Insights:        insights,
		Alerts:          alerts,
		Details:         details,
	}
}

// audit records the analysis outcome; audit failures are logged and dropped,
// never surfaced to the caller.
func (s *analysisService) audit(ctx context.Context, batch ReportBatch, result AnalysisResult) {
	if s.logRepo == nil {
		return
	}

	outcome := model.OutcomeSuccess
	if len(result.Alerts) > 0 {
		outcome = model.OutcomeAlert
	}

	details, _ := json.Marshal(map[string]any{
		"totalRegistros": result.TotalRecords,
		"fonte":          result.Source,
		"insights":       len(result.Insights),
		"alertas":        len(result.Alerts),
	})

	entry := &model.IntegrationLog{
		Source:    model.SourceAnalysis,
		Operation: "analise-relatorio",
		Outcome:   outcome,
		Subject:   batch.Filename,
		Details:   string(details),
	}
	if err := s.logRepo.Log(ctx, entry); err != nil {
		s.log.Warn("failed to write analysis audit entry", zap.Error(err))
	}
}

// --- Helpers ---

func coalesce(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// toStringSlice boxes scalar values into single-element slices and turns
// nil/empty into an empty slice, matching the analyzer's wire contract.
func toStringSlice(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}
