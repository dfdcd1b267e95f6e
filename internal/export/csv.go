// Package export renders report data into write-only tabular documents.
// Binary spreadsheet/PDF formatting belongs to external formatters; this
// package owns the row and summary contract they all consume.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
)

var hundred = decimal.NewFromInt(100)

var reportHeader = []string{
	"ID", "Date", "Product", "Quantity",
	"Revenue", "Labor", "Gross Profit", "Net Profit",
}

// ReportCSV renders the report lines followed by the consolidated summary
// block: revenue, labor, gross profit, tax, other expenses, final balance.
func ReportCSV(r core.Report, s core.Settings) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}
	for _, line := range r.Lines {
		record := []string{
			strconv.Itoa(line.Entry.ID),
			line.Entry.Date,
			line.ProductName,
			strconv.Itoa(line.Entry.Quantity),
			line.Revenue.StringFixed(2),
			line.Labor.StringFixed(2),
			line.GrossProfit.StringFixed(2),
			line.NetProfit.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write report line %d: %w", line.Entry.ID, err)
		}
	}

	summary := [][]string{
		{},
		{"Summary", "", "", "", "", "", "", ""},
		{"Revenue", r.Totals.Revenue.StringFixed(2)},
		{"Labor", r.Totals.Labor.StringFixed(2)},
		{"Gross Profit", r.Totals.GrossProfit.StringFixed(2)},
		{fmt.Sprintf("Tax (%s%%)", s.TaxRate.Mul(hundred).String()), r.Totals.TaxAmount.StringFixed(2)},
		{"Other Expenses", r.Totals.OtherExpenses.StringFixed(2)},
		{"Final Balance", r.Totals.FinalNetProfit.StringFixed(2)},
	}
	for _, record := range summary {
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush report csv: %w", err)
	}
	return buf.Bytes(), nil
}
