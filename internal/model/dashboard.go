package model

// Derived dashboard views. Everything in this file is recomputed from the
// source records on every build; none of it is persisted or authoritative.

// DashboardMetrics aggregates the filtered record sets into headline totals.
type DashboardMetrics struct {
	TotalContracts     int     `json:"total_contracts"`
	GrossVolume        float64 `json:"gross_volume"`
	NetVolume          float64 `json:"net_volume"`
	CommissionTotal    float64 `json:"commission_total"`
	AverageTicket      float64 `json:"average_ticket"`
	ImportedVolume     float64 `json:"imported_volume"`
	ImportedCommission float64 `json:"imported_commission"`
	ActivePartners     int     `json:"active_partners"`
}

// PartnerRanking ranks one partner by accumulated net volume.
type PartnerRanking struct {
	Name           string  `json:"name"`
	TotalContracts int     `json:"total_contracts"`
	NetVolume      float64 `json:"net_volume"`
	GrossVolume    float64 `json:"gross_volume"`
	AverageTicket  float64 `json:"average_ticket"`
}

// ProductRanking ranks one product line by accumulated net volume.
type ProductRanking struct {
	Name            string  `json:"name"`
	TotalContracts  int     `json:"total_contracts"`
	NetVolume       float64 `json:"net_volume"`
	GrossVolume     float64 `json:"gross_volume"`
	AverageTicket   float64 `json:"average_ticket"`
	CommissionTotal float64 `json:"commission_total"`
}

// CommissionRanking ranks one partner by accumulated commission.
type CommissionRanking struct {
	Partner         string  `json:"partner"`
	CommissionTotal float64 `json:"commission_total"`
}

// ProductCommission sums commissions for one product line.
type ProductCommission struct {
	Product         string  `json:"product"`
	CommissionTotal float64 `json:"commission_total"`
}

// BankSummary accumulates volume per destination bank.
type BankSummary struct {
	Name           string  `json:"name"`
	TotalContracts int     `json:"total_contracts"`
	NetVolume      float64 `json:"net_volume"`
	GrossVolume    float64 `json:"gross_volume"`
}

// StatusSummary accumulates contract counts per status.
type StatusSummary struct {
	Status         string  `json:"status"`
	TotalContracts int     `json:"total_contracts"`
	NetVolume      float64 `json:"net_volume"`
}

// TimelinePoint is one day of the dashboard time series.
type TimelinePoint struct {
	Date           string  `json:"date"`
	TotalContracts int     `json:"total_contracts"`
	NetVolume      float64 `json:"net_volume"`
}

// DashboardRanking groups the top-N slices shown on the dashboard.
type DashboardRanking struct {
	Partners    []PartnerRanking    `json:"partners"`
	Products    []ProductRanking    `json:"products"`
	Commissions []CommissionRanking `json:"commissions"`
	Status      []StatusSummary     `json:"status"`
}

// DashboardCharts carries the full (unsliced) chart series.
type DashboardCharts struct {
	ByPartner []PartnerRanking `json:"by_partner"`
	ByProduct []ProductRanking `json:"by_product"`
	ByBank    []BankSummary    `json:"by_bank"`
	ByStatus  []StatusSummary  `json:"by_status"`
	Timeline  []TimelinePoint  `json:"timeline"`
}

// CommissionSummary breaks the commission total down by partner and product.
type CommissionSummary struct {
	Total     float64             `json:"total"`
	ByPartner []CommissionRanking `json:"by_partner"`
	ByProduct []ProductCommission `json:"by_product"`
}

// ImportBatchSummary is the dashboard projection of one import batch.
type ImportBatchSummary struct {
	ID              string   `json:"id"`
	Filename        string   `json:"filename"`
	Partner         string   `json:"partner"`
	TotalRecords    int      `json:"total_records"`
	VolumeTotal     float64  `json:"volume_total"`
	CommissionTotal float64  `json:"commission_total"`
	Insights        []string `json:"insights"`
	Alerts          []string `json:"alerts"`
	CreatedAt       string   `json:"created_at"`
}

// ImportRecap summarizes the filtered import batches.
type ImportRecap struct {
	TotalFiles      int      `json:"total_files"`
	VolumeTotal     float64  `json:"volume_total"`
	CommissionTotal float64  `json:"commission_total"`
	Partners        []string `json:"partners"`
}

// DashboardImports pairs the recap with the most recent batches.
type DashboardImports struct {
	Recap  ImportRecap          `json:"recap"`
	Recent []ImportBatchSummary `json:"recent"`
}

// DateRange is one bound window of the period comparison.
type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD inclusive
	End   string `json:"end"`   // YYYY-MM-DD inclusive
	Days  int    `json:"days"`
}

// ComparisonWindow pairs the current range with the immediately preceding
// range of identical length.
type ComparisonWindow struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
}

// MetricDelta is the period-over-period movement of one metric. Percent is
// nil when the previous value is zero and the current is not: growth from a
// zero base is undefined, not infinite and not 100%.
type MetricDelta struct {
	Absolute float64  `json:"absolute"`
	Percent  *float64 `json:"percent"`
}

// DashboardComparison carries the previous window's metrics and the deltas.
type DashboardComparison struct {
	Window          ComparisonWindow       `json:"window"`
	PreviousMetrics DashboardMetrics       `json:"previous_metrics"`
	Delta           map[string]MetricDelta `json:"delta"`
}

// DashboardView is the full response assembled by the aggregator.
type DashboardView struct {
	Metrics     DashboardMetrics     `json:"metrics"`
	Ranking     DashboardRanking     `json:"ranking"`
	Commissions CommissionSummary    `json:"commissions"`
	Charts      DashboardCharts      `json:"charts"`
	Imports     DashboardImports     `json:"imports"`
	Comparison  *DashboardComparison `json:"comparison,omitempty"`
}
