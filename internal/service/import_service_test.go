package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingBroadcaster struct {
	events []string
	scopes []string
}

func (b *recordingBroadcaster) BroadcastEvent(event, scope string) {
	b.events = append(b.events, event)
	b.scopes = append(b.scopes, scope)
}

func newImportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ImportBatch{},
		&model.ImportedRecord{},
		&model.Contract{},
		&model.IntegrationLog{},
	))
	return db
}

func newImportTestService(t *testing.T, db *gorm.DB, events Broadcaster) ImportService {
	t.Helper()

	logRepo := repository.NewIntegrationLogRepository(db)
	analysis := NewAnalysisService(AnalysisConfig{}, logRepo, zap.NewNop())
	return NewImportService(
		repository.NewImportRepository(db),
		repository.NewContractRepository(db),
		logRepo,
		repository.NewTransactionManager(db),
		analysis,
		events,
		zap.NewNop(),
	)
}

func TestImportReportPersistsBatchAndRecords(t *testing.T) {
	db := newImportTestDB(t)
	events := &recordingBroadcaster{}
	service := newImportTestService(t, db, events)

	result, err := service.ImportReport(context.Background(), ImportRequest{
		Filename: "outubro.csv",
		Partner:  "WorkBank",
		Actor:    "ana",
		Rows: []map[string]any{
			{
				"Nome do Cliente": "Maria Silva",
				"CPF":             "123.456.789-00",
				"Contrato":        "CT-1001",
				"Produto":         "Consignado",
				"Banco":           "Banco Azul",
				"Status":          "pago",
				"Valor Líquido":   "1.000,00",
				"Comissão":        "50,00",
				"Data Pagamento":  "01/10/2025",
			},
			{
				"Nome do Cliente": "João Souza",
				"Produto":         "Cartão RMC",
				"Valor Líquido":   "2.000,00",
				"Comissão":        "40,00",
			},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.BatchID)
	require.Equal(t, 2, result.TotalRecords)
	require.InDelta(t, 3000.0, result.TotalVolume, 0.001)
	require.InDelta(t, 90.0, result.TotalCommission, 0.001)

	var batch model.ImportBatch
	require.NoError(t, db.First(&batch).Error)
	require.Equal(t, "outubro.csv", batch.Filename)
	require.Equal(t, 2, batch.TotalRecords)
	require.Contains(t, batch.Metadata, "insights")

	var records []model.ImportedRecord
	require.NoError(t, db.Order("client_name").Find(&records).Error)
	require.Len(t, records, 2)
	require.Equal(t, batch.ID, records[0].BatchID)
	require.Equal(t, "João Souza", records[0].ClientName)
	require.Equal(t, "Maria Silva", records[1].ClientName)
	require.Equal(t, "123.456.789-00", records[1].Document)
	require.Equal(t, "Banco Azul", records[1].Bank)
	require.NotNil(t, records[1].OperationDate)
	require.Equal(t, "2025-10-01", records[1].OperationDate.Format("2006-01-02"))

	// The row carrying a contract number was reconciled into the contract set.
	var contracts []model.Contract
	require.NoError(t, db.Find(&contracts).Error)
	require.Len(t, contracts, 1)
	require.Equal(t, "CT-1001", contracts[0].ContractNumber)
	require.Equal(t, "Maria Silva", contracts[0].ClientName)

	require.Equal(t, []string{"import-completed"}, events.events)
	require.Equal(t, []string{"outubro.csv"}, events.scopes)

	// One analysis entry plus one import entry in the audit trail.
	var logs []model.IntegrationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 2)
}

func TestImportReportReimportUpdatesContractInsteadOfDuplicating(t *testing.T) {
	db := newImportTestDB(t)
	service := newImportTestService(t, db, nil)
	ctx := context.Background()

	row := map[string]any{
		"Contrato":      "CT-2002",
		"Produto":       "Consignado",
		"Valor Líquido": "1.000,00",
		"Status":        "em análise",
	}
	_, err := service.ImportReport(ctx, ImportRequest{Filename: "v1.csv", Partner: "WorkBank", Rows: []map[string]any{row}})
	require.NoError(t, err)

	row["Status"] = "pago"
	row["Valor Líquido"] = "1.200,00"
	_, err = service.ImportReport(ctx, ImportRequest{Filename: "v2.csv", Partner: "WorkBank", Rows: []map[string]any{row}})
	require.NoError(t, err)

	var contracts []model.Contract
	require.NoError(t, db.Find(&contracts).Error)
	require.Len(t, contracts, 1)
	require.Equal(t, "pago", contracts[0].Status)

	var batchCount int64
	require.NoError(t, db.Model(&model.ImportBatch{}).Count(&batchCount).Error)
	require.EqualValues(t, 2, batchCount)
}

func TestImportReportDryRunWritesNothing(t *testing.T) {
	db := newImportTestDB(t)
	events := &recordingBroadcaster{}
	service := newImportTestService(t, db, events)

	persist := false
	result, err := service.ImportReport(context.Background(), ImportRequest{
		Filename: "simulacao.csv",
		Partner:  "WorkBank",
		Persist:  &persist,
		Rows:     []map[string]any{{"Produto": "Consignado", "Valor": "100,00"}},
	})
	require.NoError(t, err)
	require.Empty(t, result.BatchID)
	require.Equal(t, 1, result.TotalRecords)
	require.InDelta(t, 100.0, result.TotalVolume, 0.001)

	var batchCount int64
	require.NoError(t, db.Model(&model.ImportBatch{}).Count(&batchCount).Error)
	require.Zero(t, batchCount)
	require.Empty(t, events.events)
}

func TestImportReportRejectsEmptyInput(t *testing.T) {
	db := newImportTestDB(t)
	service := newImportTestService(t, db, nil)

	_, err := service.ImportReport(context.Background(), ImportRequest{Partner: "WorkBank"})
	require.ErrorContains(t, err, "filename")

	_, err = service.ImportReport(context.Background(), ImportRequest{Filename: "vazio.csv"})
	require.ErrorContains(t, err, "no rows")
}

func TestImportReportDefaultsPartnerToUnknown(t *testing.T) {
	db := newImportTestDB(t)
	service := newImportTestService(t, db, nil)

	result, err := service.ImportReport(context.Background(), ImportRequest{
		Filename: "sem-promotora.csv",
		Rows:     []map[string]any{{"Produto": "Consignado", "Valor": "100,00"}},
	})
	require.NoError(t, err)
	require.Equal(t, model.UnknownPartner, result.Partner)
}

func TestParseCSVSemicolonDelimited(t *testing.T) {
	db := newImportTestDB(t)
	service := newImportTestService(t, db, nil)

	csv := "Nome do Cliente;Produto;Valor Líquido\n" +
		"Maria Silva;Consignado;1.000,00\n" +
		";;\n" + // fully empty row is dropped
		"João Souza;Cartão RMC;2.000,00\n"

	rows, err := service.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Maria Silva", rows[0]["Nome do Cliente"])
	require.Equal(t, "2.000,00", rows[1]["Valor Líquido"])
}

func TestParseCSVCommaDelimitedWithBOM(t *testing.T) {
	db := newImportTestDB(t)
	service := newImportTestService(t, db, nil)

	csv := "\ufeffProduto,Valor,Comissao\nConsignado,\"1.000,00\",\"50,00\"\n"

	rows, err := service.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Consignado", rows[0]["Produto"])
	require.Equal(t, "1.000,00", rows[0]["Valor"])
}
