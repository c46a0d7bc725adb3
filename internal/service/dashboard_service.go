package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"backend/internal/fields"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/cache"
	"backend/pkg/normalize"

	"github.com/shopspring/decimal"
)

const (
	defaultRangeDays = 30
	rankingSize      = 5
	recentBatchCount = 10
	isoDateLayout    = "2006-01-02"
)

// --- DTOs ---

// DashboardFilters narrows every source collection before aggregation.
// Dates are inclusive YYYY-MM-DD bounds.
type DashboardFilters struct {
	Partner   string `json:"partner,omitempty" form:"partner"`
	Product   string `json:"product,omitempty" form:"product"`
	Status    string `json:"status,omitempty" form:"status"`
	StartDate string `json:"start_date,omitempty" form:"start_date"`
	EndDate   string `json:"end_date,omitempty" form:"end_date"`
}

// --- Interface ---

type DashboardService interface {
	// ComputeDashboardInsights builds the dashboard for the filtered window,
	// attaches the period-over-period comparison and memoizes the result.
	ComputeDashboardInsights(ctx context.Context, filters DashboardFilters) (model.DashboardView, error)
	InvalidateCache()
}

type dashboardService struct {
	contractRepo   repository.ContractRepository
	commissionRepo repository.CommissionRepository
	importRepo     repository.ImportRepository
	insightsCache  *cache.Cache
	now            func() time.Time
}

func NewDashboardService(
	contractRepo repository.ContractRepository,
	commissionRepo repository.CommissionRepository,
	importRepo repository.ImportRepository,
	insightsCache *cache.Cache,
) DashboardService {
	return &dashboardService{
		contractRepo:   contractRepo,
		commissionRepo: commissionRepo,
		importRepo:     importRepo,
		insightsCache:  insightsCache,
		now:            time.Now,
	}
}

// --- Cached entry point ---

func (s *dashboardService) ComputeDashboardInsights(ctx context.Context, filters DashboardFilters) (model.DashboardView, error) {
	filters = NormalizeFilters(filters)

	cacheKey := map[string]any{"type": "dashboard-insights", "filters": filters}
	if cached, ok := s.insightsCache.Get(cacheKey); ok {
		if view, ok := cached.(model.DashboardView); ok {
			return view, nil
		}
	}

	view, err := s.buildForFilters(ctx, filters)
	if err != nil {
		return model.DashboardView{}, err
	}

	if window, ok := BuildComparisonWindow(filters, s.now()); ok {
		previousFilters := filters
		previousFilters.StartDate = window.Previous.Start
		previousFilters.EndDate = window.Previous.End

		previousView, err := s.buildForFilters(ctx, previousFilters)
		if err != nil {
			return model.DashboardView{}, err
		}

		view.Comparison = &model.DashboardComparison{
			Window:          window,
			PreviousMetrics: previousView.Metrics,
			Delta: ComputeMetricDelta(
				metricsAsMap(view.Metrics),
				metricsAsMap(previousView.Metrics),
			),
		}
	}

	s.insightsCache.Set(cacheKey, view)
	return view, nil
}

func (s *dashboardService) buildForFilters(ctx context.Context, filters DashboardFilters) (model.DashboardView, error) {
	rowFilter := repository.RowFilter{
		Partner:   filters.Partner,
		Product:   filters.Product,
		Status:    filters.Status,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
	}

	contracts, err := s.contractRepo.FindFiltered(ctx, rowFilter)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("failed to fetch contracts: %w", err)
	}
	commissions, err := s.commissionRepo.FindFiltered(ctx, rowFilter)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("failed to fetch commissions: %w", err)
	}
	batches, err := s.importRepo.FindBatchesFiltered(ctx, rowFilter)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("failed to fetch import batches: %w", err)
	}
	records, err := s.importRepo.FindRecordsFiltered(ctx, rowFilter)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("failed to fetch imported records: %w", err)
	}

	return BuildDashboardFromRows(contracts, commissions, batches, records, filters), nil
}

func (s *dashboardService) InvalidateCache() {
	s.insightsCache.Clear()
}

// NormalizeFilters trims values, canonicalizes dates and swaps an inverted
// range so equal filter inputs always produce equal cache keys.
func NormalizeFilters(filters DashboardFilters) DashboardFilters {
	filters.Partner = strings.TrimSpace(filters.Partner)
	filters.Product = strings.TrimSpace(filters.Product)
	filters.Status = strings.TrimSpace(filters.Status)

	if iso, ok := normalize.ToISODate(filters.StartDate); ok {
		filters.StartDate = iso
	} else {
		filters.StartDate = ""
	}
	if iso, ok := normalize.ToISODate(filters.EndDate); ok {
		filters.EndDate = iso
	} else {
		filters.EndDate = ""
	}

	if filters.StartDate != "" && filters.EndDate != "" && filters.StartDate > filters.EndDate {
		filters.StartDate, filters.EndDate = filters.EndDate, filters.StartDate
	}
	return filters
}

// --- Pure aggregation ---

type volumeBucket struct {
	name        string
	contracts   int
	netVolume   decimal.Decimal
	grossVolume decimal.Decimal
}

type aggregation struct {
	totalContracts int
	grossVolume    decimal.Decimal
	netVolume      decimal.Decimal

	partnerOrder []string
	partners     map[string]*volumeBucket
	productOrder []string
	products     map[string]*volumeBucket
	bankOrder    []string
	banks        map[string]*volumeBucket

	statusOrder []string
	status      map[string]*model.StatusSummary

	timelineKeys []string
	timeline     map[string]*model.TimelinePoint

	activePartners map[string]struct{}
}

func newAggregation() *aggregation {
	return &aggregation{
		partners:       map[string]*volumeBucket{},
		products:       map[string]*volumeBucket{},
		banks:          map[string]*volumeBucket{},
		status:         map[string]*model.StatusSummary{},
		timeline:       map[string]*model.TimelinePoint{},
		activePartners: map[string]struct{}{},
	}
}

// BuildDashboardFromRows aggregates the four source collections into the
// dashboard view. Pure: inputs are only read, and an empty (or fully
// filtered-out) input still yields a complete zero-valued view.
func BuildDashboardFromRows(
	contracts []model.Contract,
	commissions []model.Commission,
	batches []model.ImportBatch,
	records []model.ImportedRecord,
	filters DashboardFilters,
) model.DashboardView {
	filters = NormalizeFilters(filters)

	agg := newAggregation()

	for _, c := range contracts {
		if !contractMatches(c, filters) {
			continue
		}
		agg.register(contractEntry(c))
	}

	importVolume := decimal.Zero
	importCommission := decimal.Zero
	commissionAgg := newCommissionAggregation()

	for _, r := range records {
		if !recordMatches(r, filters) {
			continue
		}
		// Records with a contract number were reconciled into the contract
		// set during import; registering them again would double count.
		if r.ContractNumber == "" {
			agg.register(recordEntry(r))
		}
		importVolume = importVolume.Add(r.NetVolume)
		importCommission = importCommission.Add(r.CommissionAmount)
		if !r.CommissionAmount.IsZero() {
			commissionAgg.add(partnerOrUnknown(r.Partner), productOrFallback(r.Product, r.Raw), r.CommissionAmount)
		}
	}

	for _, c := range commissions {
		if !commissionMatches(c, filters) {
			continue
		}
		commissionAgg.add(partnerOrUnknown(c.Partner), productOrFallback(c.Product, c.Payload), c.Amount)
		agg.activePartners[partnerOrUnknown(c.Partner)] = struct{}{}
	}

	importPartners := map[string]struct{}{}
	recent := []model.ImportBatchSummary{}
	fileCount := 0
	for _, b := range batches {
		if !batchMatches(b, filters) {
			continue
		}
		fileCount++
		if b.Partner != "" {
			importPartners[b.Partner] = struct{}{}
		}
		if len(recent) < recentBatchCount {
			recent = append(recent, batchSummary(b))
		}
	}

	metrics := agg.metrics(commissionAgg.total, importVolume, importCommission, importPartners)

	partnerRanking := agg.partnerRanking()
	productRanking := agg.productRanking(commissionAgg.byProduct)
	commissionByPartner := commissionAgg.partnerRanking()
	commissionByProduct := commissionAgg.productRanking()
	statusSummary := agg.statusSummary()

	return model.DashboardView{
		Metrics: metrics,
		Ranking: model.DashboardRanking{
			Partners:    topPartners(partnerRanking),
			Products:    topProducts(productRanking),
			Commissions: topCommissions(commissionByPartner),
			Status:      topStatus(statusSummary),
		},
		Commissions: model.CommissionSummary{
			Total:     round2(commissionAgg.total),
			ByPartner: commissionByPartner,
			ByProduct: commissionByProduct,
		},
		Charts: model.DashboardCharts{
			ByPartner: partnerRanking,
			ByProduct: topProducts(productRanking),
			ByBank:    agg.bankSummary(),
			ByStatus:  statusSummary,
			Timeline:  agg.timelinePoints(),
		},
		Imports: model.DashboardImports{
			Recap: model.ImportRecap{
				TotalFiles:      fileCount,
				VolumeTotal:     round2(importVolume),
				CommissionTotal: round2(importCommission),
				Partners:        sortedKeys(importPartners),
			},
			Recent: recent,
		},
	}
}

// rowEntry is one contract-shaped row, from either the contract table or an
// imported record synthesized into a contract.
type rowEntry struct {
	partner string
	product string
	status  string
	bank    string
	gross   decimal.Decimal
	net     decimal.Decimal
	dateKey string
}

func contractEntry(c model.Contract) rowEntry {
	return rowEntry{
		partner: partnerOrUnknown(c.Partner),
		product: productOrFallback(c.Product, c.Raw),
		status:  statusOrUnknown(c.Status),
		bank:    bankFromRaw(c.Bank, c.Raw),
		gross:   c.GrossVolume,
		net:     c.NetVolume,
		dateKey: dateKeyOf(c.OperationDate, c.CreatedAt),
	}
}

func recordEntry(r model.ImportedRecord) rowEntry {
	return rowEntry{
		partner: partnerOrUnknown(r.Partner),
		product: productOrFallback(r.Product, r.Raw),
		status:  statusOrUnknown(r.Status),
		bank:    bankFromRaw(r.Bank, r.Raw),
		gross:   r.GrossVolume,
		net:     r.NetVolume,
		dateKey: dateKeyOf(r.OperationDate, r.CreatedAt),
	}
}

func (a *aggregation) register(e rowEntry) {
	a.totalContracts++
	a.grossVolume = a.grossVolume.Add(e.gross)
	a.netVolume = a.netVolume.Add(e.net)
	a.activePartners[e.partner] = struct{}{}

	partner, ok := a.partners[e.partner]
	if !ok {
		partner = &volumeBucket{name: e.partner}
		a.partners[e.partner] = partner
		a.partnerOrder = append(a.partnerOrder, e.partner)
	}
	partner.contracts++
	partner.netVolume = partner.netVolume.Add(e.net)
	partner.grossVolume = partner.grossVolume.Add(e.gross)

	product, ok := a.products[e.product]
	if !ok {
		product = &volumeBucket{name: e.product}
		a.products[e.product] = product
		a.productOrder = append(a.productOrder, e.product)
	}
	product.contracts++
	product.netVolume = product.netVolume.Add(e.net)
	product.grossVolume = product.grossVolume.Add(e.gross)

	if e.bank != "" {
		bank, ok := a.banks[e.bank]
		if !ok {
			bank = &volumeBucket{name: e.bank}
			a.banks[e.bank] = bank
			a.bankOrder = append(a.bankOrder, e.bank)
		}
		bank.contracts++
		bank.netVolume = bank.netVolume.Add(e.net)
		bank.grossVolume = bank.grossVolume.Add(e.gross)
	}

	statusEntry, ok := a.status[e.status]
	if !ok {
		statusEntry = &model.StatusSummary{Status: e.status}
		a.status[e.status] = statusEntry
		a.statusOrder = append(a.statusOrder, e.status)
	}
	statusEntry.TotalContracts++
	statusEntry.NetVolume = round2(decimal.NewFromFloat(statusEntry.NetVolume).Add(e.net))

	if e.dateKey != "" {
		point, ok := a.timeline[e.dateKey]
		if !ok {
			point = &model.TimelinePoint{Date: e.dateKey}
			a.timeline[e.dateKey] = point
			a.timelineKeys = append(a.timelineKeys, e.dateKey)
		}
		point.TotalContracts++
		point.NetVolume = round2(decimal.NewFromFloat(point.NetVolume).Add(e.net))
	}
}

func (a *aggregation) metrics(
	commissionTotal decimal.Decimal,
	importVolume, importCommission decimal.Decimal,
	importPartners map[string]struct{},
) model.DashboardMetrics {
	averageTicket := 0.0
	if a.totalContracts > 0 {
		averageTicket = round2(a.netVolume.Div(decimal.NewFromInt(int64(a.totalContracts))))
	}

	activePartners := len(a.activePartners)
	if activePartners == 0 {
		activePartners = len(importPartners)
	}

	return model.DashboardMetrics{
		TotalContracts:     a.totalContracts,
		GrossVolume:        round2(a.grossVolume),
		NetVolume:          round2(a.netVolume),
		CommissionTotal:    round2(commissionTotal),
		AverageTicket:      averageTicket,
		ImportedVolume:     round2(importVolume),
		ImportedCommission: round2(importCommission),
		ActivePartners:     activePartners,
	}
}

func (a *aggregation) partnerRanking() []model.PartnerRanking {
	entries := make([]model.PartnerRanking, 0, len(a.partnerOrder))
	for _, name := range a.partnerOrder {
		b := a.partners[name]
		ticket := 0.0
		if b.contracts > 0 {
			ticket = round2(b.netVolume.Div(decimal.NewFromInt(int64(b.contracts))))
		}
		entries = append(entries, model.PartnerRanking{
			Name:           b.name,
			TotalContracts: b.contracts,
			NetVolume:      round2(b.netVolume),
			GrossVolume:    round2(b.grossVolume),
			AverageTicket:  ticket,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetVolume > entries[j].NetVolume
	})
	return entries
}

func (a *aggregation) productRanking(commissionByProduct map[string]decimal.Decimal) []model.ProductRanking {
	entries := make([]model.ProductRanking, 0, len(a.productOrder))
	for _, name := range a.productOrder {
		b := a.products[name]
		ticket := 0.0
		if b.contracts > 0 {
			ticket = round2(b.netVolume.Div(decimal.NewFromInt(int64(b.contracts))))
		}
		entries = append(entries, model.ProductRanking{
			Name:            b.name,
			TotalContracts:  b.contracts,
			NetVolume:       round2(b.netVolume),
			GrossVolume:     round2(b.grossVolume),
			AverageTicket:   ticket,
			CommissionTotal: round2(commissionByProduct[name]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetVolume > entries[j].NetVolume
	})
	return entries
}

func (a *aggregation) bankSummary() []model.BankSummary {
	entries := make([]model.BankSummary, 0, len(a.bankOrder))
	for _, name := range a.bankOrder {
		b := a.banks[name]
		entries = append(entries, model.BankSummary{
			Name:           b.name,
			TotalContracts: b.contracts,
			NetVolume:      round2(b.netVolume),
			GrossVolume:    round2(b.grossVolume),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetVolume > entries[j].NetVolume
	})
	return entries
}

func (a *aggregation) statusSummary() []model.StatusSummary {
	entries := make([]model.StatusSummary, 0, len(a.statusOrder))
	for _, name := range a.statusOrder {
		entries = append(entries, *a.status[name])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalContracts > entries[j].TotalContracts
	})
	return entries
}

func (a *aggregation) timelinePoints() []model.TimelinePoint {
	sort.Strings(a.timelineKeys)
	points := make([]model.TimelinePoint, 0, len(a.timelineKeys))
	for _, key := range a.timelineKeys {
		points = append(points, *a.timeline[key])
	}
	return points
}

// --- Commission aggregation ---

type commissionAggregation struct {
	total        decimal.Decimal
	partnerOrder []string
	byPartner    map[string]decimal.Decimal
	productOrder []string
	byProduct    map[string]decimal.Decimal
}

func newCommissionAggregation() *commissionAggregation {
	return &commissionAggregation{
		byPartner: map[string]decimal.Decimal{},
		byProduct: map[string]decimal.Decimal{},
	}
}

func (c *commissionAggregation) add(partner, product string, amount decimal.Decimal) {
	c.total = c.total.Add(amount)

	if _, ok := c.byPartner[partner]; !ok {
		c.partnerOrder = append(c.partnerOrder, partner)
	}
	c.byPartner[partner] = c.byPartner[partner].Add(amount)

	if _, ok := c.byProduct[product]; !ok {
		c.productOrder = append(c.productOrder, product)
	}
	c.byProduct[product] = c.byProduct[product].Add(amount)
}

func (c *commissionAggregation) partnerRanking() []model.CommissionRanking {
	entries := make([]model.CommissionRanking, 0, len(c.partnerOrder))
	for _, partner := range c.partnerOrder {
		entries = append(entries, model.CommissionRanking{
			Partner:         partner,
			CommissionTotal: round2(c.byPartner[partner]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CommissionTotal > entries[j].CommissionTotal
	})
	return entries
}

func (c *commissionAggregation) productRanking() []model.ProductCommission {
	entries := make([]model.ProductCommission, 0, len(c.productOrder))
	for _, product := range c.productOrder {
		entries = append(entries, model.ProductCommission{
			Product:         product,
			CommissionTotal: round2(c.byProduct[product]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CommissionTotal > entries[j].CommissionTotal
	})
	return entries
}

// --- Comparison window & deltas ---

// BuildComparisonWindow resolves the current range (defaulting to the
// trailing 30 days) and derives the previous range with the same day count,
// ending the day before the current range starts.
func BuildComparisonWindow(filters DashboardFilters, now time.Time) (model.ComparisonWindow, bool) {
	current, ok := resolveRangeWindow(filters, now)
	if !ok {
		return model.ComparisonWindow{}, false
	}

	currentStart, err := time.Parse(isoDateLayout, current.Start)
	if err != nil {
		return model.ComparisonWindow{}, false
	}

	previousEnd := currentStart.AddDate(0, 0, -1)
	previousStart := previousEnd.AddDate(0, 0, -(current.Days - 1))

	return model.ComparisonWindow{
		Current: current,
		Previous: model.DateRange{
			Start: previousStart.Format(isoDateLayout),
			End:   previousEnd.Format(isoDateLayout),
			Days:  current.Days,
		},
	}, true
}

func resolveRangeWindow(filters DashboardFilters, now time.Time) (model.DateRange, bool) {
	start, startOK := parseISODate(filters.StartDate)
	end, endOK := parseISODate(filters.EndDate)

	switch {
	case !startOK && !endOK:
		end = now.UTC().Truncate(24 * time.Hour)
		start = end.AddDate(0, 0, -(defaultRangeDays - 1))
	case startOK && !endOK:
		end = now.UTC().Truncate(24 * time.Hour)
	case !startOK && endOK:
		start = end.AddDate(0, 0, -(defaultRangeDays - 1))
	}

	if start.After(end) {
		start, end = end, start
	}

	days := int(end.Sub(start).Hours()/24) + 1

	return model.DateRange{
		Start: start.Format(isoDateLayout),
		End:   end.Format(isoDateLayout),
		Days:  days,
	}, true
}

// ComputeMetricDelta computes absolute and percent movement per metric.
// Percent is nil for growth from a zero base (undefined), 0 when both
// windows are zero, else (current-previous)/|previous|*100.
func ComputeMetricDelta(current, previous map[string]float64) map[string]model.MetricDelta {
	keys := map[string]struct{}{}
	for k := range current {
		keys[k] = struct{}{}
	}
	for k := range previous {
		keys[k] = struct{}{}
	}

	delta := make(map[string]model.MetricDelta, len(keys))
	for key := range keys {
		currentValue := current[key]
		previousValue := previous[key]

		entry := model.MetricDelta{
			Absolute: round2(decimal.NewFromFloat(currentValue).Sub(decimal.NewFromFloat(previousValue))),
		}

		switch {
		case previousValue == 0 && currentValue == 0:
			zero := 0.0
			entry.Percent = &zero
		case previousValue == 0:
			entry.Percent = nil
		default:
			percent := round2(decimal.NewFromFloat(currentValue).
				Sub(decimal.NewFromFloat(previousValue)).
				Div(decimal.NewFromFloat(previousValue).Abs()).
				Mul(decimal.NewFromInt(100)))
			entry.Percent = &percent
		}

		delta[key] = entry
	}
	return delta
}

func metricsAsMap(m model.DashboardMetrics) map[string]float64 {
	return map[string]float64{
		"total_contracts":     float64(m.TotalContracts),
		"gross_volume":        m.GrossVolume,
		"net_volume":          m.NetVolume,
		"commission_total":    m.CommissionTotal,
		"average_ticket":      m.AverageTicket,
		"imported_volume":     m.ImportedVolume,
		"imported_commission": m.ImportedCommission,
		"active_partners":     float64(m.ActivePartners),
	}
}

// --- Filter matching ---

func contractMatches(c model.Contract, f DashboardFilters) bool {
	if f.Partner != "" && c.Partner != f.Partner {
		return false
	}
	if f.Product != "" && c.Product != f.Product {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return dateInRange(dateKeyOf(c.OperationDate, c.CreatedAt), f)
}

func recordMatches(r model.ImportedRecord, f DashboardFilters) bool {
	if f.Partner != "" && r.Partner != f.Partner {
		return false
	}
	if f.Product != "" && r.Product != f.Product {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return dateInRange(dateKeyOf(r.OperationDate, r.CreatedAt), f)
}

func commissionMatches(c model.Commission, f DashboardFilters) bool {
	if f.Partner != "" && c.Partner != f.Partner {
		return false
	}
	if f.Product != "" && c.Product != f.Product {
		return false
	}
	// Reference periods sort lexicographically in ISO form. Bounds are cut
	// down to the period's own granularity, so "2025-10" stays inside a
	// 2025-10-01..2025-10-31 window.
	if f.StartDate != "" && c.ReferencePeriod < truncateBound(f.StartDate, c.ReferencePeriod) {
		return false
	}
	if f.EndDate != "" && c.ReferencePeriod > truncateBound(f.EndDate, c.ReferencePeriod) {
		return false
	}
	return true
}

func truncateBound(bound, period string) string {
	if len(period) > 0 && len(period) < len(bound) {
		return bound[:len(period)]
	}
	return bound
}

func batchMatches(b model.ImportBatch, f DashboardFilters) bool {
	if f.Partner != "" && b.Partner != f.Partner {
		return false
	}
	return dateInRange(b.CreatedAt.UTC().Format(isoDateLayout), f)
}

func dateInRange(dateKey string, f DashboardFilters) bool {
	if dateKey == "" {
		return f.StartDate == "" && f.EndDate == ""
	}
	if f.StartDate != "" && dateKey < f.StartDate {
		return false
	}
	if f.EndDate != "" && dateKey > f.EndDate {
		return false
	}
	return true
}

// --- Helpers ---

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func parseISODate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func partnerOrUnknown(partner string) string {
	if strings.TrimSpace(partner) == "" {
		return model.UnknownPartner
	}
	return strings.TrimSpace(partner)
}

func statusOrUnknown(status string) string {
	if strings.TrimSpace(status) == "" {
		return "desconhecido"
	}
	return strings.TrimSpace(status)
}

// productOrFallback resolves the product name, digging into the raw source
// attachment with the alias sets when the column itself is empty.
func productOrFallback(product, raw string) string {
	if strings.TrimSpace(product) != "" {
		return strings.TrimSpace(product)
	}
	if resolved := fields.ResolveString(parseRaw(raw), fields.DefaultAliases.Product); resolved != "" {
		return resolved
	}
	return "Sem produto"
}

func bankFromRaw(bank, raw string) string {
	if strings.TrimSpace(bank) != "" {
		return strings.TrimSpace(bank)
	}
	return fields.ResolveString(parseRaw(raw), fields.DefaultAliases.Bank)
}

func parseRaw(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}
	return parsed
}

func dateKeyOf(operationDate *time.Time, createdAt time.Time) string {
	if operationDate != nil && !operationDate.IsZero() {
		return operationDate.UTC().Format(isoDateLayout)
	}
	if !createdAt.IsZero() {
		return createdAt.UTC().Format(isoDateLayout)
	}
	return ""
}

func batchSummary(b model.ImportBatch) model.ImportBatchSummary {
	summary := model.ImportBatchSummary{
		ID:              b.ID.String(),
		Filename:        b.Filename,
		Partner:         b.Partner,
		TotalRecords:    b.TotalRecords,
		VolumeTotal:     round2(b.TotalVolume),
		CommissionTotal: round2(b.TotalCommission),
		Insights:        []string{},
		Alerts:          []string{},
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}

	metadata := parseRaw(b.Metadata)
	if metadata != nil {
		summary.Insights = toStringSlice(metadata["insights"])
		summary.Alerts = toStringSlice(metadata["alertas"])
	}
	return summary
}

func topPartners(entries []model.PartnerRanking) []model.PartnerRanking {
	if len(entries) > rankingSize {
		return entries[:rankingSize]
	}
	return entries
}

func topProducts(entries []model.ProductRanking) []model.ProductRanking {
	if len(entries) > rankingSize {
		return entries[:rankingSize]
	}
	return entries
}

func topCommissions(entries []model.CommissionRanking) []model.CommissionRanking {
	if len(entries) > rankingSize {
		return entries[:rankingSize]
	}
	return entries
}

func topStatus(entries []model.StatusSummary) []model.StatusSummary {
	if len(entries) > rankingSize {
		return entries[:rankingSize]
	}
	return entries
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
