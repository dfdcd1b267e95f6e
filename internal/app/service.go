package app

import (
	"context"
	"io"
)

// ApplicationService is the single interface the HTTP adapter calls. It
// decouples presentation from business logic; implementations contain no
// rendering of any kind. All reads hand already-fetched collections to the
// pure aggregation functions in internal/core; all writes go through the
// persistence stores and return the server-confirmed record, so callers
// only replace their local state after the backend accepted the change.
type ApplicationService interface {
	// ListCategories returns all product categories.
	ListCategories(ctx context.Context) ([]CategoryResult, error)

	// CreateCategory adds a category.
	CreateCategory(ctx context.Context, name string) (*CategoryResult, error)

	// RenameCategory updates a category's name.
	RenameCategory(ctx context.Context, id int, name string) error

	// DeleteCategory removes a category. Its products are orphaned to
	// uncategorized, never deleted.
	DeleteCategory(ctx context.Context, id int) error

	// ListProducts returns the full catalog.
	ListProducts(ctx context.Context) ([]ProductResult, error)

	// CreateProduct adds a catalog product.
	CreateProduct(ctx context.Context, input ProductInput) (*ProductResult, error)

	// UpdateProduct replaces a product's editable fields.
	UpdateProduct(ctx context.Context, id int, input ProductInput) error

	// DeleteProduct removes a product under the configured delete policy
	// (cascade removes its production entries, orphan keeps them renderable
	// through the removed-product sentinel).
	DeleteProduct(ctx context.Context, id int) error

	// GetProductionOverview returns every production entry enriched with
	// its financial breakdown, newest first, plus all-time totals.
	GetProductionOverview(ctx context.Context) (*OverviewResult, error)

	// CreateEntry records a production entry.
	CreateEntry(ctx context.Context, input EntryInput) (*EntryResult, error)

	// UpdateEntry replaces an entry's date, quantity, and invoice number.
	UpdateEntry(ctx context.Context, id int, input EntryInput) error

	// SetEntryPaid toggles an entry's payment flag.
	SetEntryPaid(ctx context.Context, id int, paid bool) error

	// DeleteEntry removes a production entry.
	DeleteEntry(ctx context.Context, id int) error

	// ListExpenses returns all standalone expenses, newest first.
	ListExpenses(ctx context.Context) ([]ExpenseResult, error)

	// CreateExpense records a standalone expense.
	CreateExpense(ctx context.Context, input ExpenseInput) (*ExpenseResult, error)

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, id int) error

	// GetDashboard returns the consolidated stats, daily profit series, and
	// product-mix distribution for one calendar year-month.
	GetDashboard(ctx context.Context, year, month int) (*DashboardResult, error)

	// GetReport returns the detailed report for an inclusive date range and
	// optional product filter.
	GetReport(ctx context.Context, filter ReportFilter) (*ReportResult, error)

	// ExportReportCSV renders the same report as a CSV document with the
	// consolidated summary block appended.
	ExportReportCSV(ctx context.Context, filter ReportFilter) ([]byte, error)

	// ImportInvoice parses an invoice XML document, reconciles its items
	// against the catalog, and opens a review session. When every item
	// matched, the session is immediately ready to commit.
	ImportInvoice(ctx context.Context, doc io.Reader) (*ImportReview, error)

	// SetImportLabor supplies labor costs (keyed by pending item name) and
	// the target category for a session's unmatched items. The session
	// becomes ready to commit once every pending item has a cost.
	SetImportLabor(sessionID string, input ImportLaborInput) (*ImportReview, error)

	// CommitImport persists everything a ready session holds: new products
	// first, then one production entry per matched item and per created
	// product. Submissions are sequential; on partial failure the returned
	// CommitError reports what was already persisted and the session is
	// closed rather than left retryable (a retry would duplicate records).
	CommitImport(ctx context.Context, sessionID string) (*ImportCommit, error)

	// CancelImport discards a pending review session. Nothing is persisted.
	CancelImport(sessionID string) error

	// Ask sends a business question to the assistant together with the
	// current data snapshot. Assistant failures are ordinary errors for the
	// adapter to render as chat messages; they never affect other flows.
	Ask(ctx context.Context, question string) (*AssistantAnswer, error)
}
