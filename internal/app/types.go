package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
)

// ── Inputs ────────────────────────────────────────────────────────────────────

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name       string          `json:"name"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	LaborCost  decimal.Decimal `json:"labor_cost"`
	CategoryID *int            `json:"category_id"`
}

// Validate applies the form-boundary rules the engine assumes were already
// enforced: non-empty name, non-negative money. A sale value below the
// labor cost is allowed; the model represents loss-making products.
func (in ProductInput) Validate() error {
	if in.Name == "" {
		return errors.New("product name is required")
	}
	if in.SaleValue.IsNegative() {
		return errors.New("sale value must not be negative")
	}
	if in.LaborCost.IsNegative() {
		return errors.New("labor cost must not be negative")
	}
	return nil
}

// EntryInput carries the editable fields of a production entry.
type EntryInput struct {
	ProductID     int    `json:"product_id"`
	Date          string `json:"date"`
	Quantity      int    `json:"quantity"`
	InvoiceNumber string `json:"invoice_number"`
}

func (in EntryInput) Validate() error {
	if in.ProductID <= 0 {
		return errors.New("product is required")
	}
	if in.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", in.Date, err)
	}
	return nil
}

// ExpenseInput carries the editable fields of an expense.
type ExpenseInput struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Date        string          `json:"date"`
}

func (in ExpenseInput) Validate() error {
	if in.Description == "" {
		return errors.New("description is required")
	}
	if in.Value.IsNegative() {
		return errors.New("value must not be negative")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", in.Date, err)
	}
	return nil
}

// ReportFilter is the adapter-facing form of core.RangeFilter.
type ReportFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ProductID int    `json:"product_id"`
}

func (f ReportFilter) Validate() error {
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q: %w", d, err)
		}
	}
	return nil
}

func (f ReportFilter) toCore() core.RangeFilter {
	return core.RangeFilter{StartDate: f.StartDate, EndDate: f.EndDate, ProductID: f.ProductID}
}

// ImportLaborInput supplies the human review of an invoice session.
type ImportLaborInput struct {
	LaborCosts map[string]decimal.Decimal `json:"labor_costs"`
	CategoryID *int                       `json:"category_id"`
}

// ── Results ───────────────────────────────────────────────────────────────────

type CategoryResult = core.Category

type ProductResult = core.Product

type EntryResult = core.ProductionEntry

type ExpenseResult = core.Expense

// OverviewResult is the production log screen: all entries enriched,
// newest first, with all-time totals.
type OverviewResult struct {
	Lines  []core.ReportLine `json:"lines"`
	Totals core.Totals       `json:"totals"`
}

// DashboardResult is everything the dashboard renders for one period.
type DashboardResult struct {
	Period        core.Period         `json:"period"`
	Totals        core.Totals         `json:"totals"`
	ProductsCount int                 `json:"products_count"`
	Series        []core.DailyPoint   `json:"series"`
	Distribution  []core.ProductShare `json:"distribution"`
	Currency      string              `json:"currency"`
}

// ReportResult is the detailed report view.
type ReportResult struct {
	Filter ReportFilter      `json:"filter"`
	Lines  []core.ReportLine `json:"lines"`
	Totals core.Totals       `json:"totals"`
}

// ImportReview describes a pending invoice import session to the reviewer.
type ImportReview struct {
	SessionID    string             `json:"session_id"`
	State        ImportState        `json:"state"`
	Meta         core.InvoiceMeta   `json:"meta"`
	Matched      []core.MatchedItem `json:"matched"`
	Unmatched    []core.PendingItem `json:"unmatched"`
	MissingLabor []string           `json:"missing_labor,omitempty"`
}

// ImportCommit summarizes a successful invoice commit.
type ImportCommit struct {
	ProductsCreated int `json:"products_created"`
	EntriesCreated  int `json:"entries_created"`
}

// AssistantAnswer wraps the model's structured reply.
type AssistantAnswer struct {
	Reply core.AssistantReply `json:"reply"`
}

// ── Errors ────────────────────────────────────────────────────────────────────

var (
	// ErrAssistantUnavailable is returned when no assistant is configured
	// (missing API key). The dashboard keeps working without it.
	ErrAssistantUnavailable = errors.New("assistant is not configured")
)

// CommitError reports a partial invoice commit: the persistence gateway
// rejected a request after earlier requests in the same commit succeeded.
// There is no compensating rollback; the counts tell the operator exactly
// what made it in.
type CommitError struct {
	ProductsCreated int
	EntriesCreated  int
	Err             error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("invoice commit failed after creating %d products and %d entries: %v",
		e.ProductsCreated, e.EntriesCreated, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
