package core_test

import (
	"testing"

	"workshop-manager/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() []core.Product {
	return []core.Product{
		{ID: 1, Name: "Almofada", SaleValue: dec("50"), LaborCost: dec("20")},
		{ID: 2, Name: "Cortina", SaleValue: dec("10"), LaborCost: dec("20")},
		{ID: 3, Name: "Tapete", SaleValue: dec("30"), LaborCost: dec("30")},
	}
}

func TestBuildReportLine(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()

	tests := []struct {
		name        string
		entry       core.ProductionEntry
		productName string
		revenue     string
		labor       string
		grossProfit string
		taxAmount   string
		netProfit   string
	}{
		{
			// 10 × (50 - 20) = 300 gross, 7.5% tax
			name:        "profitable entry",
			entry:       core.ProductionEntry{ID: 1, ProductID: 1, Date: "2025-03-10", Quantity: 10},
			productName: "Almofada",
			revenue:     "500", labor: "200", grossProfit: "300", taxAmount: "22.5", netProfit: "277.5",
		},
		{
			// losses are not taxed
			name:        "loss entry",
			entry:       core.ProductionEntry{ID: 2, ProductID: 2, Date: "2025-03-10", Quantity: 10},
			productName: "Cortina",
			revenue:     "100", labor: "200", grossProfit: "-100", taxAmount: "0", netProfit: "-100",
		},
		{
			// zero gross profit contributes zero tax, not negative, not skipped
			name:        "break-even entry",
			entry:       core.ProductionEntry{ID: 3, ProductID: 3, Date: "2025-03-10", Quantity: 4},
			productName: "Tapete",
			revenue:     "120", labor: "120", grossProfit: "0", taxAmount: "0", netProfit: "0",
		},
		{
			name:        "removed product",
			entry:       core.ProductionEntry{ID: 4, ProductID: 99, Date: "2025-03-10", Quantity: 7},
			productName: core.RemovedProductName,
			revenue:     "0", labor: "0", grossProfit: "0", taxAmount: "0", netProfit: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := core.BuildReportLine(tt.entry, products, s)
			if line.ProductName != tt.productName {
				t.Errorf("product name = %q, want %q", line.ProductName, tt.productName)
			}
			checks := []struct {
				field string
				got   decimal.Decimal
				want  string
			}{
				{"revenue", line.Revenue, tt.revenue},
				{"labor", line.Labor, tt.labor},
				{"gross profit", line.GrossProfit, tt.grossProfit},
				{"tax", line.TaxAmount, tt.taxAmount},
				{"net profit", line.NetProfit, tt.netProfit},
			}
			for _, c := range checks {
				if !c.got.Equal(dec(c.want)) {
					t.Errorf("%s = %s, want %s", c.field, c.got, c.want)
				}
			}
			if !line.NetProfit.Equal(line.GrossProfit.Sub(line.TaxAmount)) {
				t.Errorf("net profit identity violated: %s != %s - %s", line.NetProfit, line.GrossProfit, line.TaxAmount)
			}
		})
	}
}

func TestPeriodTotals(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()
	period := &core.Period{Year: 2025, Month: 3}

	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-05", Quantity: 5},
		{ID: 2, ProductID: 1, Date: "2025-03-20", Quantity: 3},
		{ID: 3, ProductID: 1, Date: "2025-04-01", Quantity: 100}, // outside period
		{ID: 4, ProductID: 99, Date: "2025-03-12", Quantity: 2},  // removed product
	}
	expenses := []core.Expense{
		{ID: 1, Description: "Rent", Value: dec("50"), Date: "2025-03-01"},
		{ID: 2, Description: "Rent", Value: dec("50"), Date: "2025-04-01"}, // outside period
	}

	totals := core.PeriodTotals(entries, products, expenses, period, s)

	// qty 8 of Almofada: revenue 400, labor 160, gross 240, tax 18, net 222
	if !totals.Revenue.Equal(dec("400")) {
		t.Errorf("revenue = %s, want 400", totals.Revenue)
	}
	if !totals.GrossProfit.Equal(dec("240")) {
		t.Errorf("gross profit = %s, want 240", totals.GrossProfit)
	}
	if !totals.TaxAmount.Equal(dec("18")) {
		t.Errorf("tax = %s, want 18", totals.TaxAmount)
	}
	if !totals.ProductionNetProfit.Equal(dec("222")) {
		t.Errorf("production net profit = %s, want 222", totals.ProductionNetProfit)
	}
	if !totals.OtherExpenses.Equal(dec("50")) {
		t.Errorf("other expenses = %s, want 50", totals.OtherExpenses)
	}
	if !totals.FinalNetProfit.Equal(dec("172")) {
		t.Errorf("final net profit = %s, want 172", totals.FinalNetProfit)
	}
	if totals.TotalQuantity != 10 {
		t.Errorf("total quantity = %d, want 10 (8 + 2 removed-product units)", totals.TotalQuantity)
	}
	// The removed-product entry counts as a line even though it adds zero money.
	if totals.LineCount != 3 {
		t.Errorf("line count = %d, want 3", totals.LineCount)
	}
}

func TestPeriodTotals_Linearity(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()
	period := &core.Period{Year: 2025, Month: 3}

	all := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-05", Quantity: 5},
		{ID: 2, ProductID: 2, Date: "2025-03-07", Quantity: 9},
		{ID: 3, ProductID: 3, Date: "2025-03-11", Quantity: 4},
		{ID: 4, ProductID: 1, Date: "2025-03-28", Quantity: 1},
	}
	left, right := all[:2], all[2:]

	whole := core.PeriodTotals(all, products, nil, period, s)
	a := core.PeriodTotals(left, products, nil, period, s)
	b := core.PeriodTotals(right, products, nil, period, s)

	pairs := []struct {
		field string
		whole decimal.Decimal
		parts decimal.Decimal
	}{
		{"revenue", whole.Revenue, a.Revenue.Add(b.Revenue)},
		{"labor", whole.Labor, a.Labor.Add(b.Labor)},
		{"gross profit", whole.GrossProfit, a.GrossProfit.Add(b.GrossProfit)},
		{"tax", whole.TaxAmount, a.TaxAmount.Add(b.TaxAmount)},
		{"production net profit", whole.ProductionNetProfit, a.ProductionNetProfit.Add(b.ProductionNetProfit)},
	}
	for _, p := range pairs {
		if !p.whole.Equal(p.parts) {
			t.Errorf("%s not linear: whole %s != parts %s", p.field, p.whole, p.parts)
		}
	}
	if whole.TotalQuantity != a.TotalQuantity+b.TotalQuantity {
		t.Errorf("quantity not linear: %d != %d + %d", whole.TotalQuantity, a.TotalQuantity, b.TotalQuantity)
	}
}

func TestPeriodTotals_DateHandling(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()

	tests := []struct {
		name     string
		date     string
		period   core.Period
		included bool
	}{
		{"full date in period", "2025-03-01", core.Period{Year: 2025, Month: 3}, true},
		{"full date other month", "2025-03-01", core.Period{Year: 2025, Month: 4}, false},
		{"full date other year", "2024-03-01", core.Period{Year: 2025, Month: 3}, false},
		{"month-only date", "2025-03", core.Period{Year: 2025, Month: 3}, true},
		{"malformed date excluded", "not-a-date", core.Period{Year: 2025, Month: 3}, false},
		{"bare year excluded", "2025", core.Period{Year: 2025, Month: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []core.ProductionEntry{{ID: 1, ProductID: 1, Date: tt.date, Quantity: 1}}
			expenses := []core.Expense{{ID: 1, Description: "x", Value: dec("10"), Date: tt.date}}
			totals := core.PeriodTotals(entries, products, expenses, &tt.period, s)

			if got := totals.LineCount == 1; got != tt.included {
				t.Errorf("entry included = %v, want %v", got, tt.included)
			}
			if got := totals.OtherExpenses.Equal(dec("10")); got != tt.included {
				t.Errorf("expense included = %v, want %v", got, tt.included)
			}
		})
	}
}

func TestDailySeries(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()
	period := &core.Period{Year: 2025, Month: 3}

	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-20", Quantity: 2},
		{ID: 2, ProductID: 1, Date: "2025-03-05", Quantity: 1},
		{ID: 3, ProductID: 1, Date: "2025-03-05", Quantity: 1},
		{ID: 4, ProductID: 99, Date: "2025-03-09", Quantity: 5}, // removed product: no point
		{ID: 5, ProductID: 1, Date: "2025-04-02", Quantity: 9},  // outside period
	}

	series := core.DailySeries(entries, products, period, s)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if series[0].Date != "2025-03-05" || series[1].Date != "2025-03-20" {
		t.Errorf("series not ordered ascending by day: %s, %s", series[0].Date, series[1].Date)
	}
	if series[0].Day != "05" {
		t.Errorf("day label = %q, want \"05\"", series[0].Day)
	}
	// Two entries of 1 unit each, unit margin 30: gross 60, net 55.5.
	if !series[0].GrossProfit.Equal(dec("60")) {
		t.Errorf("day gross profit = %s, want 60", series[0].GrossProfit)
	}
	if !series[0].NetProfit.Equal(dec("55.5")) {
		t.Errorf("day net profit = %s, want 55.5", series[0].NetProfit)
	}
}

func TestDailySeries_LossDayUntaxed(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()

	entries := []core.ProductionEntry{{ID: 1, ProductID: 2, Date: "2025-03-05", Quantity: 3}}
	series := core.DailySeries(entries, products, &core.Period{Year: 2025, Month: 3}, s)
	if len(series) != 1 {
		t.Fatalf("series length = %d, want 1", len(series))
	}
	// unit margin -10 × 3: gross and net both -30
	if !series[0].GrossProfit.Equal(dec("-30")) || !series[0].NetProfit.Equal(dec("-30")) {
		t.Errorf("loss day = gross %s net %s, want -30/-30", series[0].GrossProfit, series[0].NetProfit)
	}
}

func TestProductDistribution(t *testing.T) {
	products := []core.Product{
		{ID: 1, Name: "Almofada", SaleValue: dec("50"), LaborCost: dec("20")},
		{ID: 2, Name: "Cortina", SaleValue: dec("40"), LaborCost: dec("15")},
		{ID: 3, Name: "Tapete", SaleValue: dec("30"), LaborCost: dec("10")},
		{ID: 4, Name: "Manta", SaleValue: dec("25"), LaborCost: dec("10")},
	}
	period := &core.Period{Year: 2025, Month: 3}
	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 3, Date: "2025-03-01", Quantity: 7},
		{ID: 2, ProductID: 1, Date: "2025-03-02", Quantity: 4},
		{ID: 3, ProductID: 1, Date: "2025-03-03", Quantity: 3},
		{ID: 4, ProductID: 2, Date: "2025-03-04", Quantity: 7}, // ties Almofada on 7
		{ID: 5, ProductID: 4, Date: "2025-03-05", Quantity: 1},
	}

	shares := core.ProductDistribution(entries, products, period, 3)
	want := []core.ProductShare{
		{Name: "Almofada", Quantity: 7}, // tie with Cortina and Tapete, name ascending
		{Name: "Cortina", Quantity: 7},
		{Name: "Tapete", Quantity: 7},
	}
	if len(shares) != len(want) {
		t.Fatalf("got %d shares, want %d", len(shares), len(want))
	}
	for i := range want {
		if shares[i] != want[i] {
			t.Errorf("share[%d] = %+v, want %+v", i, shares[i], want[i])
		}
	}
}

func TestBuildRangeReport(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()

	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-05", Quantity: 2},
		{ID: 2, ProductID: 2, Date: "2025-03-10", Quantity: 1},
		{ID: 3, ProductID: 1, Date: "2025-02-28", Quantity: 4}, // before range
		{ID: 4, ProductID: 1, Date: "2025-03-31", Quantity: 1}, // inclusive end
	}
	expenses := []core.Expense{
		{ID: 1, Description: "Thread", Value: dec("15"), Date: "2025-03-12"},
		{ID: 2, Description: "Rent", Value: dec("80"), Date: "2025-02-01"},
	}
	f := core.RangeFilter{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	r := core.BuildRangeReport(entries, products, expenses, f, s)
	if len(r.Lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(r.Lines))
	}
	// Newest first.
	if r.Lines[0].Entry.ID != 4 || r.Lines[2].Entry.ID != 1 {
		t.Errorf("lines not ordered newest first: %d, %d, %d",
			r.Lines[0].Entry.ID, r.Lines[1].Entry.ID, r.Lines[2].Entry.ID)
	}
	if !r.Totals.OtherExpenses.Equal(dec("15")) {
		t.Errorf("other expenses = %s, want 15", r.Totals.OtherExpenses)
	}

	// Product filter narrows entries but not expenses.
	f.ProductID = 1
	r = core.BuildRangeReport(entries, products, expenses, f, s)
	if len(r.Lines) != 2 {
		t.Errorf("product-filtered line count = %d, want 2", len(r.Lines))
	}
	if !r.Totals.OtherExpenses.Equal(dec("15")) {
		t.Errorf("product filter leaked into expenses: %s", r.Totals.OtherExpenses)
	}
}

func TestAggregation_Idempotent(t *testing.T) {
	products := testCatalog()
	s := core.DefaultSettings()
	period := &core.Period{Year: 2025, Month: 3}
	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-05", Quantity: 5},
		{ID: 2, ProductID: 2, Date: "2025-03-07", Quantity: 9},
	}
	expenses := []core.Expense{{ID: 1, Description: "Rent", Value: dec("50"), Date: "2025-03-01"}}

	first := core.PeriodTotals(entries, products, expenses, period, s)
	second := core.PeriodTotals(entries, products, expenses, period, s)
	if !first.FinalNetProfit.Equal(second.FinalNetProfit) || first.LineCount != second.LineCount {
		t.Errorf("recomputation drifted: %+v vs %+v", first, second)
	}

	s1 := core.DailySeries(entries, products, period, s)
	s2 := core.DailySeries(entries, products, period, s)
	if len(s1) != len(s2) {
		t.Fatalf("series length drifted: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i].Date != s2[i].Date || !s1[i].NetProfit.Equal(s2[i].NetProfit) {
			t.Errorf("series[%d] drifted: %+v vs %+v", i, s1[i], s2[i])
		}
	}
}
