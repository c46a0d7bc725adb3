package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"backend/internal/fields"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/normalize"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Import validation errors.
var (
	ErrImportFilename = errors.New("import is missing a filename")
	ErrImportNoRows   = errors.New("import has no rows")
)

// --- DTOs ---

// ImportRequest is one report file submitted for ingestion, already decoded
// into rows. Column names are whatever the source system used.
type ImportRequest struct {
	Filename string           `json:"filename"`
	Partner  string           `json:"promotora"`
	Actor    string           `json:"actor"`
	Rows     []map[string]any `json:"linhas"`
	// Persist defaults to true; false runs normalization and analysis only,
	// writing nothing.
	Persist *bool `json:"persistir"`
}

// ImportResult reports the persisted batch alongside its analysis.
type ImportResult struct {
	BatchID         string         `json:"batch_id"`
	Filename        string         `json:"filename"`
	Partner         string         `json:"partner"`
	TotalRecords    int            `json:"total_records"`
	TotalVolume     float64        `json:"total_volume"`
	TotalCommission float64        `json:"total_commission"`
	Analysis        AnalysisResult `json:"analysis"`
}

type ListImportBatchesRequest struct {
	Page  int
	Limit int
}

// --- Interface ---

type ImportService interface {
	// ImportReport normalizes the rows, runs analysis and persists the batch
	// with its records in one transaction.
	ImportReport(ctx context.Context, req ImportRequest) (ImportResult, error)
	// ParseCSV decodes an uploaded CSV into rows keyed by the header line.
	// Comma and semicolon separated files are both accepted.
	ParseCSV(r io.Reader) ([]map[string]any, error)
	ListImportBatches(ctx context.Context, req ListImportBatchesRequest) ([]model.ImportBatch, int64, error)
}

type importService struct {
	importRepo   repository.ImportRepository
	contractRepo repository.ContractRepository
	logRepo      repository.IntegrationLogRepository
	txManager    repository.TransactionManager
	analysis     AnalysisService
	aliases      fields.Aliases
	events       Broadcaster
	log          *zap.Logger
}

func NewImportService(
	importRepo repository.ImportRepository,
	contractRepo repository.ContractRepository,
	logRepo repository.IntegrationLogRepository,
	txManager repository.TransactionManager,
	analysis AnalysisService,
	events Broadcaster,
	log *zap.Logger,
) ImportService {
	return &importService{
		importRepo:   importRepo,
		contractRepo: contractRepo,
		logRepo:      logRepo,
		txManager:    txManager,
		analysis:     analysis,
		aliases:      fields.DefaultAliases,
		events:       events,
		log:          log,
	}
}

// --- Implementation ---

func (s *importService) ImportReport(ctx context.Context, req ImportRequest) (ImportResult, error) {
	req.Filename = strings.TrimSpace(req.Filename)
	req.Partner = strings.TrimSpace(req.Partner)

	if req.Filename == "" {
		return ImportResult{}, ErrImportFilename
	}
	if len(req.Rows) == 0 {
		return ImportResult{}, fmt.Errorf("%q: %w", req.Filename, ErrImportNoRows)
	}
	if req.Partner == "" {
		req.Partner = model.UnknownPartner
	}

	records, totalVolume, totalCommission := s.buildRecords(req)

	analysis := s.analysis.AnalyzeReport(ctx, ReportBatch{
		Filename: req.Filename,
		Partner:  req.Partner,
		Rows:     req.Rows,
	})

	if req.Persist != nil && !*req.Persist {
		// Dry run: the caller gets the normalized totals and the analysis,
		// nothing touches the database.
		return ImportResult{
			Filename:        req.Filename,
			Partner:         req.Partner,
			TotalRecords:    len(records),
			TotalVolume:     round2(decimal.NewFromFloat(totalVolume)),
			TotalCommission: round2(decimal.NewFromFloat(totalCommission)),
			Analysis:        analysis,
		}, nil
	}

	metadata, _ := json.Marshal(map[string]any{
		"insights": analysis.Insights,
		"alertas":  analysis.Alerts,
		"fonte":    analysis.Source,
		"actor":    req.Actor,
	})

	batch := &model.ImportBatch{
		Filename:        req.Filename,
		Partner:         req.Partner,
		TotalRecords:    len(records),
		TotalVolume:     decimal.NewFromFloat(totalVolume),
		TotalCommission: decimal.NewFromFloat(totalCommission),
		Metadata:        string(metadata),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.importRepo.CreateBatch(txCtx, batch); createErr != nil {
			return fmt.Errorf("failed to create import batch: %w", createErr)
		}
		for i := range records {
			records[i].BatchID = batch.ID
		}
		if createErr := s.importRepo.CreateRecords(txCtx, records); createErr != nil {
			return fmt.Errorf("failed to persist imported records: %w", createErr)
		}
		// Records carrying a contract number also reconcile the contract
		// itself, so re-imports update rather than duplicate.
		for i := range records {
			if records[i].ContractNumber == "" {
				continue
			}
			if upsertErr := s.contractRepo.Upsert(txCtx, contractFromRecord(records[i])); upsertErr != nil {
				return fmt.Errorf("failed to upsert contract %s: %w", records[i].ContractNumber, upsertErr)
			}
		}
		return nil
	})
	if err != nil {
		s.auditImport(ctx, req, model.OutcomeError, err.Error())
		return ImportResult{}, err
	}

	outcome := model.OutcomeSuccess
	if len(analysis.Alerts) > 0 {
		outcome = model.OutcomeAlert
	}
	s.auditImport(ctx, req, outcome, fmt.Sprintf("%d registros importados", len(records)))

	if s.events != nil {
		s.events.BroadcastEvent("import-completed", req.Filename)
	}

	return ImportResult{
		BatchID:         batch.ID.String(),
		Filename:        batch.Filename,
		Partner:         batch.Partner,
		TotalRecords:    batch.TotalRecords,
		TotalVolume:     round2(batch.TotalVolume),
		TotalCommission: round2(batch.TotalCommission),
		Analysis:        analysis,
	}, nil
}

// buildRecords maps each raw row into the canonical record shape through the
// alias sets. Rows that resolve to nothing still count; the raw payload is
// kept verbatim for later reprocessing.
func (s *importService) buildRecords(req ImportRequest) ([]model.ImportedRecord, float64, float64) {
	records := make([]model.ImportedRecord, 0, len(req.Rows))
	var totalVolume, totalCommission float64

	for _, row := range req.Rows {
		gross := fields.ResolveNumber(row, s.aliases.GrossVolume)
		net := fields.ResolveNumber(row, s.aliases.NetVolume)
		if net == 0 {
			net = gross
		}
		commission := fields.ResolveNumber(row, s.aliases.Commission)

		record := model.ImportedRecord{
			Partner:          req.Partner,
			ClientName:       fields.ResolveString(row, s.aliases.Client),
			Document:         fields.ResolveString(row, s.aliases.Document),
			ContractNumber:   fields.ResolveString(row, s.aliases.Contract),
			Product:          fields.ResolveString(row, s.aliases.Product),
			Bank:             fields.ResolveString(row, s.aliases.Bank),
			Status:           fields.ResolveString(row, s.aliases.Status),
			GrossVolume:      decimal.NewFromFloat(normalize.ToCurrency(gross)),
			NetVolume:        decimal.NewFromFloat(normalize.ToCurrency(net)),
			CommissionAmount: decimal.NewFromFloat(normalize.ToCurrency(commission)),
		}

		if iso, ok := fields.ResolveDate(row, s.aliases.ReferenceDate); ok {
			if parsed, err := time.Parse(isoDateLayout, iso); err == nil {
				record.OperationDate = &parsed
			}
		}

		if raw, err := json.Marshal(row); err == nil {
			record.Raw = string(raw)
		}

		totalVolume += net
		totalCommission += commission
		records = append(records, record)
	}

	return records, totalVolume, totalCommission
}

func contractFromRecord(record model.ImportedRecord) *model.Contract {
	return &model.Contract{
		ContractNumber:   record.ContractNumber,
		ClientName:       record.ClientName,
		Partner:          record.Partner,
		Product:          record.Product,
		Bank:             record.Bank,
		Status:           record.Status,
		GrossVolume:      record.GrossVolume,
		NetVolume:        record.NetVolume,
		CommissionAmount: record.CommissionAmount,
		OperationDate:    record.OperationDate,
		Raw:              record.Raw,
	}
}

func (s *importService) ParseCSV(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows := []map[string]any{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+2, err)
		}

		row := make(map[string]any, len(header))
		empty := true
		for i, column := range header {
			if column == "" || i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			row[column] = value
			if value != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// detectDelimiter picks semicolon when the header line leans that way, the
// common export format of pt-BR spreadsheets.
func detectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func (s *importService) ListImportBatches(ctx context.Context, req ListImportBatchesRequest) ([]model.ImportBatch, int64, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	batches, total, err := s.importRepo.ListBatches(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import batches: %w", err)
	}
	return batches, total, nil
}

// auditImport mirrors the analysis audit: failures are logged and dropped.
func (s *importService) auditImport(ctx context.Context, req ImportRequest, outcome, message string) {
	if s.logRepo == nil {
		return
	}

	details, _ := json.Marshal(map[string]any{
		"promotora": req.Partner,
		"registros": len(req.Rows),
		"actor":     req.Actor,
		"mensagem":  message,
	})

	entry := &model.IntegrationLog{
		Source:    model.SourceImport,
		Operation: "upload",
		Outcome:   outcome,
		Subject:   req.Filename,
		Details:   string(details),
	}
	if err := s.logRepo.Log(ctx, entry); err != nil {
		s.log.Warn("failed to write import audit entry", zap.Error(err))
	}
}
