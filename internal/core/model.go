package core

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat tax applied to positive production gross profit.
var DefaultTaxRate = decimal.NewFromFloat(0.075)

// Settings holds the financial parameters the aggregation functions run under.
// Lifting these out of the functions keeps the engine pure and testable
// across jurisdictions; every aggregation call receives one explicitly.
type Settings struct {
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Currency string          `json:"currency"`
}

// DefaultSettings returns the workshop defaults: 7.5% tax, Brazilian real.
func DefaultSettings() Settings {
	return Settings{TaxRate: DefaultTaxRate, Currency: "BRL"}
}

// Category groups products. Deleting a category never deletes its products;
// they fall back to uncategorized (nil CategoryID).
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is one item in the workshop catalog. SaleValue is the full
// manufacturing/sale value per unit and LaborCost the labor portion of it.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	LaborCost  decimal.Decimal `json:"labor_cost"`
	CategoryID *int            `json:"category_id,omitempty"`
}

// UnitMargin is the gross margin of a single unit. It may be negative; the
// model does not forbid products that sell below their labor cost.
func (p Product) UnitMargin() decimal.Decimal {
	return p.SaleValue.Sub(p.LaborCost)
}

// ProductionEntry records that Quantity units of a product were produced or
// invoiced on Date (YYYY-MM-DD). Quantity is always positive.
type ProductionEntry struct {
	ID            int    `json:"id"`
	ProductID     int    `json:"product_id"`
	Date          string `json:"date"`
	Quantity      int    `json:"quantity"`
	Paid          bool   `json:"paid"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// Expense is a standalone cost not tied to a product (rent, supplies).
// Monthly expenses are conventionally dated to the first of the month, but
// the model accepts any calendar date.
type Expense struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Date        string          `json:"date"`
}

// RemovedProductName labels report lines whose product no longer exists.
const RemovedProductName = "Removed Product"

// ReportLine is a production entry enriched with its financial breakdown.
// Derived, never persisted. A line whose product was deleted carries the
// RemovedProductName sentinel and zero in every monetary field, so history
// stays renderable after its referents are gone.
type ReportLine struct {
	Entry       ProductionEntry `json:"entry"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Labor       decimal.Decimal `json:"labor"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

// Totals is the consolidated financial summary for a set of report lines
// plus the expense rollup of the same scope.
type Totals struct {
	Revenue             decimal.Decimal `json:"revenue"`
	Labor               decimal.Decimal `json:"labor"`
	GrossProfit         decimal.Decimal `json:"gross_profit"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	ProductionNetProfit decimal.Decimal `json:"production_net_profit"`
	OtherExpenses       decimal.Decimal `json:"other_expenses"`
	FinalNetProfit      decimal.Decimal `json:"final_net_profit"`
	TotalQuantity       int             `json:"total_quantity"`
	LineCount           int             `json:"line_count"`
}

// Period is a calendar year-month used to scope aggregation.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}
