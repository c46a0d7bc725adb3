package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingLogRepo captures audit entries instead of touching a database.
type recordingLogRepo struct {
	entries []model.IntegrationLog
}

func (r *recordingLogRepo) Log(_ context.Context, entry *model.IntegrationLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingLogRepo) List(context.Context, repository.IntegrationLogFilter, int, int) ([]model.IntegrationLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func newTestAnalysisService(url string, timeout time.Duration, logRepo repository.IntegrationLogRepository) AnalysisService {
	return NewAnalysisService(AnalysisConfig{
		URL:     url,
		APIKey:  "test-key",
		Timeout: timeout,
	}, logRepo, zap.NewNop())
}

func sampleBatch() ReportBatch {
	return ReportBatch{
		Filename: "outubro.csv",
		Partner:  "WorkBank",
		Rows: []map[string]any{
			{"Produto": "Consignado", "Valor Líquido": "1.000,00", "Comissão": "50,00"},
			{"Produto": "Consignado", "Valor Líquido": "500,00", "Comissão": "25,00"},
			{"Produto": "Cartão RMC", "Valor Líquido": "2.000,00", "Comissão": "40,00"},
		},
	}
}

func TestAnalyzeReportUsesRemoteService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dados":{"totalRegistros":3,"totalVolume":"3.500,00","totalComissao":"115,00","insights":["ok"],"alertas":[],"fonte":"codex"}}`))
	}))
	defer server.Close()

	logRepo := &recordingLogRepo{}
	service := newTestAnalysisService(server.URL, time.Second, logRepo)

	result := service.AnalyzeReport(context.Background(), sampleBatch())

	require.Equal(t, "codex", result.Source)
	require.Equal(t, 3, result.TotalRecords)
	require.InDelta(t, 3500.0, result.TotalVolume, 0.001)
	require.InDelta(t, 115.0, result.TotalCommission, 0.001)
	require.Equal(t, []string{"ok"}, result.Insights)
	require.Empty(t, result.Alerts)

	require.Len(t, logRepo.entries, 1)
	require.Equal(t, model.SourceAnalysis, logRepo.entries[0].Source)
	require.Equal(t, model.OutcomeSuccess, logRepo.entries[0].Outcome)
	require.Equal(t, "outubro.csv", logRepo.entries[0].Subject)
}

func TestAnalyzeReportFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestAnalysisService(server.URL, time.Second, nil)

	result := service.AnalyzeReport(context.Background(), sampleBatch())

	require.Equal(t, "heuristica-local", result.Source)
	require.Equal(t, 3, result.TotalRecords)
	require.InDelta(t, 3500.0, result.TotalVolume, 0.001)
	require.InDelta(t, 115.0, result.TotalCommission, 0.001)
}

func TestAnalyzeReportFallsBackOnTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	service := newTestAnalysisService(server.URL, 50*time.Millisecond, nil)

	start := time.Now()
	result := service.AnalyzeReport(context.Background(), sampleBatch())

	require.Equal(t, "heuristica-local", result.Source)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestAnalyzeReportFallsBackOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"dados": not-json`))
	}))
	defer server.Close()

	service := newTestAnalysisService(server.URL, time.Second, nil)

	result := service.AnalyzeReport(context.Background(), sampleBatch())
	require.Equal(t, "heuristica-local", result.Source)
}

func TestAnalyzeReportHeuristicTopProductAndRate(t *testing.T) {
	service := newTestAnalysisService("", 0, nil) // no URL disables the remote path

	result := service.AnalyzeReport(context.Background(), sampleBatch())

	require.Equal(t, "heuristica-local", result.Source)
	require.Contains(t, result.Insights[0], "Cartão RMC") // highest volume product
	require.InDelta(t, 3500.0, result.TotalVolume, 0.001)
	require.InDelta(t, 115.0, result.TotalCommission, 0.001)
	// 115 / 3500 = 3.29% sits above the low-rate threshold.
	require.Empty(t, result.Alerts)
}

func TestAnalyzeReportHeuristicFlagsLowCommissionRate(t *testing.T) {
	service := newTestAnalysisService("", 0, nil)

	result := service.AnalyzeReport(context.Background(), ReportBatch{
		Filename: "baixa.csv",
		Partner:  "WorkBank",
		Rows: []map[string]any{
			{"Produto": "Consignado", "Valor Líquido": "10.000,00", "Comissão": "50,00"},
		},
	})

	require.Len(t, result.Alerts, 1)
	require.Contains(t, result.Alerts[0], "abaixo de 2%")
}

func TestAnalyzeReportHeuristicFlagsUnrecognizedColumns(t *testing.T) {
	logRepo := &recordingLogRepo{}
	service := newTestAnalysisService("", 0, logRepo)

	result := service.AnalyzeReport(context.Background(), ReportBatch{
		Filename: "opaco.csv",
		Partner:  "WorkBank",
		Rows: []map[string]any{
			{"coluna_a": "x", "coluna_b": "y"},
		},
	})

	require.Len(t, result.Alerts, 1)
	require.Contains(t, result.Alerts[0], "Nao foi possivel identificar")

	require.Len(t, logRepo.entries, 1)
	require.Equal(t, model.OutcomeAlert, logRepo.entries[0].Outcome)
}
