package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dateAt(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func contractFixture(partner, product string, net float64, day string) model.Contract {
	return model.Contract{
		Partner:       partner,
		Product:       product,
		Status:        "pago",
		GrossVolume:   decimal.NewFromFloat(net * 1.1),
		NetVolume:     decimal.NewFromFloat(net),
		OperationDate: dateAt(day),
	}
}

func TestBuildDashboardFromRowsEmptyInputYieldsZeroView(t *testing.T) {
	view := BuildDashboardFromRows(nil, nil, nil, nil, DashboardFilters{})

	require.Zero(t, view.Metrics.TotalContracts)
	require.Zero(t, view.Metrics.NetVolume)
	require.Zero(t, view.Metrics.CommissionTotal)
	require.Zero(t, view.Metrics.ActivePartners)
	require.Empty(t, view.Ranking.Partners)
	require.Empty(t, view.Charts.Timeline)
	require.Empty(t, view.Imports.Recent)
	require.Zero(t, view.Imports.Recap.TotalFiles)
	require.Nil(t, view.Comparison)
}

func TestBuildDashboardFromRowsAggregatesMetricsAndRankings(t *testing.T) {
	contracts := []model.Contract{
		contractFixture("WorkBank", "Consignado", 1000, "2025-10-01"),
		contractFixture("WorkBank", "Consignado", 500, "2025-10-02"),
		contractFixture("NovaPromo", "Cartão RMC", 2000, "2025-10-02"),
	}
	commissions := []model.Commission{
		{ReferencePeriod: "2025-10", Partner: "WorkBank", Product: "Consignado", Amount: decimal.NewFromFloat(45)},
		{ReferencePeriod: "2025-10", Partner: "NovaPromo", Product: "Cartão RMC", Amount: decimal.NewFromFloat(80)},
	}

	view := BuildDashboardFromRows(contracts, commissions, nil, nil, DashboardFilters{})

	require.Equal(t, 3, view.Metrics.TotalContracts)
	require.InDelta(t, 3500.0, view.Metrics.NetVolume, 0.001)
	require.InDelta(t, 125.0, view.Metrics.CommissionTotal, 0.001)
	require.Equal(t, 2, view.Metrics.ActivePartners)
	require.InDelta(t, 1166.67, view.Metrics.AverageTicket, 0.001)

	// Volume ranking: NovaPromo (2000) ahead of WorkBank (1500).
	require.Len(t, view.Ranking.Partners, 2)
	require.Equal(t, "NovaPromo", view.Ranking.Partners[0].Name)
	require.Equal(t, "WorkBank", view.Ranking.Partners[1].Name)
	require.Equal(t, 2, view.Ranking.Partners[1].TotalContracts)

	// Commission ranking: NovaPromo (80) ahead of WorkBank (45).
	require.Len(t, view.Commissions.ByPartner, 2)
	require.Equal(t, "NovaPromo", view.Commissions.ByPartner[0].Partner)
	require.InDelta(t, 80.0, view.Commissions.ByPartner[0].CommissionTotal, 0.001)
	require.InDelta(t, 125.0, view.Commissions.Total, 0.001)

	// Timeline sorted ascending by date.
	require.Len(t, view.Charts.Timeline, 2)
	require.Equal(t, "2025-10-01", view.Charts.Timeline[0].Date)
	require.Equal(t, "2025-10-02", view.Charts.Timeline[1].Date)
	require.Equal(t, 2, view.Charts.Timeline[1].TotalContracts)
}

func TestBuildDashboardFromRowsFiltersByPartnerAndRange(t *testing.T) {
	contracts := []model.Contract{
		contractFixture("WorkBank", "Consignado", 1000, "2025-10-01"),
		contractFixture("NovaPromo", "Consignado", 2000, "2025-10-02"),
		contractFixture("WorkBank", "Consignado", 700, "2025-11-15"),
	}

	view := BuildDashboardFromRows(contracts, nil, nil, nil, DashboardFilters{
		Partner:   "WorkBank",
		StartDate: "2025-10-01",
		EndDate:   "2025-10-31",
	})

	require.Equal(t, 1, view.Metrics.TotalContracts)
	require.InDelta(t, 1000.0, view.Metrics.NetVolume, 0.001)
	require.Equal(t, 1, view.Metrics.ActivePartners)
}

func TestBuildDashboardFromRowsRankingKeepsTopFive(t *testing.T) {
	contracts := make([]model.Contract, 0, 7)
	for i := 0; i < 7; i++ {
		contracts = append(contracts, contractFixture(
			string(rune('A'+i)), "Consignado", float64(100*(i+1)), "2025-10-01"))
	}

	view := BuildDashboardFromRows(contracts, nil, nil, nil, DashboardFilters{})

	require.Len(t, view.Ranking.Partners, 5)
	require.Equal(t, "G", view.Ranking.Partners[0].Name) // highest volume first
	require.Len(t, view.Charts.ByPartner, 7)             // charts keep the full series
}

func TestBuildDashboardFromRowsBlendsImportedRecords(t *testing.T) {
	records := []model.ImportedRecord{
		{
			Partner:          "WorkBank",
			Product:          "Consignado",
			Status:           "pago",
			GrossVolume:      decimal.NewFromFloat(1100),
			NetVolume:        decimal.NewFromFloat(1000),
			CommissionAmount: decimal.NewFromFloat(30),
			OperationDate:    dateAt("2025-10-05"),
		},
	}
	batches := []model.ImportBatch{
		{
			Filename:        "outubro.csv",
			Partner:         "WorkBank",
			TotalRecords:    1,
			TotalVolume:     decimal.NewFromFloat(1000),
			TotalCommission: decimal.NewFromFloat(30),
			Metadata:        `{"insights":["Volume total identificado: R$ 1000.00"],"alertas":[]}`,
			CreatedAt:       *dateAt("2025-10-05"),
		},
	}

	view := BuildDashboardFromRows(nil, nil, batches, records, DashboardFilters{})

	require.Equal(t, 1, view.Metrics.TotalContracts)
	require.InDelta(t, 1000.0, view.Metrics.ImportedVolume, 0.001)
	require.InDelta(t, 30.0, view.Metrics.ImportedCommission, 0.001)
	require.InDelta(t, 30.0, view.Metrics.CommissionTotal, 0.001)

	require.Equal(t, 1, view.Imports.Recap.TotalFiles)
	require.Equal(t, []string{"WorkBank"}, view.Imports.Recap.Partners)
	require.Len(t, view.Imports.Recent, 1)
	require.Equal(t, "outubro.csv", view.Imports.Recent[0].Filename)
	require.Len(t, view.Imports.Recent[0].Insights, 1)
	require.Empty(t, view.Imports.Recent[0].Alerts)
}

func TestComputeMetricDelta(t *testing.T) {
	delta := ComputeMetricDelta(
		map[string]float64{"net_volume": 120, "commission_total": 2666.66, "imported_volume": 50, "gross_volume": 0},
		map[string]float64{"net_volume": 100, "commission_total": 3000, "imported_volume": 0, "gross_volume": 0},
	)

	net := delta["net_volume"]
	require.InDelta(t, 20.0, net.Absolute, 0.001)
	require.NotNil(t, net.Percent)
	require.InDelta(t, 20.0, *net.Percent, 0.001)

	commission := delta["commission_total"]
	require.InDelta(t, -333.34, commission.Absolute, 0.001)
	require.NotNil(t, commission.Percent)
	require.InDelta(t, -11.11, *commission.Percent, 0.001)

	// Growth from a zero base has no defined percentage.
	imported := delta["imported_volume"]
	require.InDelta(t, 50.0, imported.Absolute, 0.001)
	require.Nil(t, imported.Percent)

	// Flat at zero stays at 0%.
	gross := delta["gross_volume"]
	require.Zero(t, gross.Absolute)
	require.NotNil(t, gross.Percent)
	require.Zero(t, *gross.Percent)
}

func TestBuildComparisonWindowExplicitRange(t *testing.T) {
	window, ok := BuildComparisonWindow(DashboardFilters{
		StartDate: "2025-10-01",
		EndDate:   "2025-10-15",
	}, time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC))

	require.True(t, ok)
	require.Equal(t, 15, window.Current.Days)
	require.Equal(t, "2025-10-01", window.Current.Start)
	require.Equal(t, "2025-10-15", window.Current.End)

	// Previous window ends the day before the current one starts, same length.
	require.Equal(t, 15, window.Previous.Days)
	require.Equal(t, "2025-09-16", window.Previous.Start)
	require.Equal(t, "2025-09-30", window.Previous.End)
}

func TestBuildComparisonWindowDefaultsToTrailingThirtyDays(t *testing.T) {
	now := time.Date(2025, 10, 31, 8, 30, 0, 0, time.UTC)

	window, ok := BuildComparisonWindow(DashboardFilters{}, now)

	require.True(t, ok)
	require.Equal(t, 30, window.Current.Days)
	require.Equal(t, "2025-10-02", window.Current.Start)
	require.Equal(t, "2025-10-31", window.Current.End)
	require.Equal(t, "2025-09-02", window.Previous.Start)
	require.Equal(t, "2025-10-01", window.Previous.End)
}

func TestNormalizeFiltersCanonicalizesDatesAndSwapsInvertedRange(t *testing.T) {
	filters := NormalizeFilters(DashboardFilters{
		Partner:   "  WorkBank ",
		StartDate: "15/10/2025",
		EndDate:   "01/10/2025",
	})

	require.Equal(t, "WorkBank", filters.Partner)
	require.Equal(t, "2025-10-01", filters.StartDate)
	require.Equal(t, "2025-10-15", filters.EndDate)
}
