package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ── Aggregation engine ────────────────────────────────────────────────────────
//
// Every function here is a total, pure function over already-fetched
// collections. None of them touch storage, none of them error for
// data-shape reasons: a dangling product reference degrades to the sentinel
// line, a date that cannot be parsed into year/month simply matches no
// period. Calling any of them twice with the same inputs yields identical
// output.

// productByID returns the product with the given id, or nil.
func productByID(products []Product, id int) *Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

// matchesPeriod reports whether an ISO date string falls in the given
// year-month. A nil period matches everything. Stored dates may be full
// dates ("2025-03-10") or month-only ("2025-03"); both are supported.
// Anything that does not yield a numeric year and month matches nothing.
func matchesPeriod(date string, period *Period) bool {
	if period == nil {
		return true
	}
	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 {
		return false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return year == period.Year && month == period.Month
}

// BuildReportLine computes the financial breakdown of a single production
// entry against the catalog. An entry whose product was deleted yields a
// zero-valued line labeled RemovedProductName; this is a representable
// case, not an error.
func BuildReportLine(entry ProductionEntry, products []Product, s Settings) ReportLine {
	line := ReportLine{Entry: entry, ProductName: RemovedProductName}

	product := productByID(products, entry.ProductID)
	if product == nil {
		return line
	}

	qty := decimal.NewFromInt(int64(entry.Quantity))
	line.ProductName = product.Name
	line.Revenue = product.SaleValue.Mul(qty)
	line.Labor = product.LaborCost.Mul(qty)
	line.GrossProfit = line.Revenue.Sub(line.Labor)
	if line.GrossProfit.IsPositive() {
		line.TaxAmount = line.GrossProfit.Mul(s.TaxRate)
	}
	line.NetProfit = line.GrossProfit.Sub(line.TaxAmount)
	return line
}

// PeriodTotals reduces the entries and expenses of one year-month (or of the
// whole history when period is nil) to the consolidated summary.
//
// Totals are linear: summing the totals of two disjoint subsets equals the
// totals of their union. Entries referencing removed products contribute
// zero to every monetary field but are still counted in LineCount.
func PeriodTotals(entries []ProductionEntry, products []Product, expenses []Expense, period *Period, s Settings) Totals {
	var t Totals

	for _, entry := range entries {
		if !matchesPeriod(entry.Date, period) {
			continue
		}
		line := BuildReportLine(entry, products, s)
		t.Revenue = t.Revenue.Add(line.Revenue)
		t.Labor = t.Labor.Add(line.Labor)
		t.GrossProfit = t.GrossProfit.Add(line.GrossProfit)
		t.TaxAmount = t.TaxAmount.Add(line.TaxAmount)
		t.TotalQuantity += entry.Quantity
		t.LineCount++
	}
	t.ProductionNetProfit = t.GrossProfit.Sub(t.TaxAmount)

	for _, ex := range expenses {
		if !matchesPeriod(ex.Date, period) {
			continue
		}
		t.OtherExpenses = t.OtherExpenses.Add(ex.Value)
	}
	t.FinalNetProfit = t.ProductionNetProfit.Sub(t.OtherExpenses)
	return t
}

// DailyPoint is one day of the profit time series.
type DailyPoint struct {
	Date        string          `json:"date"` // full ISO date of the group
	Day         string          `json:"day"`  // day-of-month label for charting
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

// DailySeries groups the period's entries by exact date and sums gross and
// net profit per day, ordered ascending by date. Entries whose product no
// longer exists are skipped: they would only add empty zero-valued days.
func DailySeries(entries []ProductionEntry, products []Product, period *Period, s Settings) []DailyPoint {
	byDate := make(map[string]*DailyPoint)

	for _, entry := range entries {
		if !matchesPeriod(entry.Date, period) {
			continue
		}
		product := productByID(products, entry.ProductID)
		if product == nil {
			continue
		}

		gross := product.UnitMargin().Mul(decimal.NewFromInt(int64(entry.Quantity)))
		net := gross
		if gross.IsPositive() {
			net = gross.Mul(decimal.NewFromInt(1).Sub(s.TaxRate))
		}

		point, ok := byDate[entry.Date]
		if !ok {
			day := entry.Date
			if parts := strings.SplitN(entry.Date, "-", 3); len(parts) == 3 {
				day = parts[2]
			}
			point = &DailyPoint{Date: entry.Date, Day: day}
			byDate[entry.Date] = point
		}
		point.GrossProfit = point.GrossProfit.Add(gross)
		point.NetProfit = point.NetProfit.Add(net)
	}

	series := make([]DailyPoint, 0, len(byDate))
	for _, p := range byDate {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// ProductShare is one slice of the product-mix distribution.
type ProductShare struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DefaultDistributionLimit caps the product-mix chart at five slices.
const DefaultDistributionLimit = 5

// ProductDistribution sums the period's quantities per product name and
// returns the top groups. Ranking is an explicit contract: total quantity
// descending, ties broken by name ascending, truncated to limit (values
// < 1 fall back to DefaultDistributionLimit).
func ProductDistribution(entries []ProductionEntry, products []Product, period *Period, limit int) []ProductShare {
	if limit < 1 {
		limit = DefaultDistributionLimit
	}

	byName := make(map[string]int)
	for _, entry := range entries {
		if !matchesPeriod(entry.Date, period) {
			continue
		}
		product := productByID(products, entry.ProductID)
		if product == nil {
			continue
		}
		byName[product.Name] += entry.Quantity
	}

	shares := make([]ProductShare, 0, len(byName))
	for name, qty := range byName {
		shares = append(shares, ProductShare{Name: name, Quantity: qty})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Quantity != shares[j].Quantity {
			return shares[i].Quantity > shares[j].Quantity
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > limit {
		shares = shares[:limit]
	}
	return shares
}

// RangeFilter scopes the detailed report view: inclusive ISO date bounds
// (empty string means unbounded) and an optional product (0 means all).
type RangeFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ProductID int    `json:"product_id"`
}

func (f RangeFilter) matchesEntry(e ProductionEntry) bool {
	if f.ProductID != 0 && e.ProductID != f.ProductID {
		return false
	}
	return f.matchesDate(e.Date)
}

// matchesDate relies on ISO dates comparing correctly as strings.
func (f RangeFilter) matchesDate(date string) bool {
	if f.StartDate != "" && date < f.StartDate {
		return false
	}
	if f.EndDate != "" && date > f.EndDate {
		return false
	}
	return true
}

// Report is the detailed report view: per-entry lines plus the consolidated
// summary over the same filter.
type Report struct {
	Lines  []ReportLine `json:"lines"`
	Totals Totals       `json:"totals"`
}

// BuildRangeReport maps the filtered entries through BuildReportLine, sorts
// them newest first, and reduces them together with the filtered expenses
// to the summary block. The product filter applies to entries only;
// expenses are scoped by date alone.
func BuildRangeReport(entries []ProductionEntry, products []Product, expenses []Expense, f RangeFilter, s Settings) Report {
	var r Report

	for _, entry := range entries {
		if !f.matchesEntry(entry) {
			continue
		}
		line := BuildReportLine(entry, products, s)
		r.Lines = append(r.Lines, line)

		r.Totals.Revenue = r.Totals.Revenue.Add(line.Revenue)
		r.Totals.Labor = r.Totals.Labor.Add(line.Labor)
		r.Totals.GrossProfit = r.Totals.GrossProfit.Add(line.GrossProfit)
		r.Totals.TaxAmount = r.Totals.TaxAmount.Add(line.TaxAmount)
		r.Totals.TotalQuantity += entry.Quantity
		r.Totals.LineCount++
	}
	r.Totals.ProductionNetProfit = r.Totals.GrossProfit.Sub(r.Totals.TaxAmount)

	sort.SliceStable(r.Lines, func(i, j int) bool {
		return r.Lines[i].Entry.Date > r.Lines[j].Entry.Date
	})

	for _, ex := range expenses {
		if !f.matchesDate(ex.Date) {
			continue
		}
		r.Totals.OtherExpenses = r.Totals.OtherExpenses.Add(ex.Value)
	}
	r.Totals.FinalNetProfit = r.Totals.ProductionNetProfit.Sub(r.Totals.OtherExpenses)
	return r
}
