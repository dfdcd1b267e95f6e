package app

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"workshop-manager/internal/ai"
	"workshop-manager/internal/core"
	"workshop-manager/internal/export"
	"workshop-manager/internal/invoice"
	"workshop-manager/internal/store"
)

// Options are the policy knobs the service runs under, normally taken from
// configuration.
type Options struct {
	Settings     core.Settings
	DeletePolicy store.DeletePolicy
	Rounding     core.RoundingMode
}

// Service implements ApplicationService over the pgx stores, the pure core
// functions, and the assistant. A nil assistant is valid; Ask then reports
// ErrAssistantUnavailable while everything else keeps working.
type Service struct {
	categories *store.CategoryStore
	products   *store.ProductStore
	entries    *store.EntryStore
	expenses   *store.ExpenseStore
	assistant  ai.AssistantService
	sessions   *sessionStore
	opts       Options
	log        *zap.Logger
}

var _ ApplicationService = (*Service)(nil)

// NewService wires a Service and starts the import-session purge loop.
func NewService(ctx context.Context, pool *pgxpool.Pool, assistant ai.AssistantService, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		categories: store.NewCategoryStore(pool),
		products:   store.NewProductStore(pool),
		entries:    store.NewEntryStore(pool),
		expenses:   store.NewExpenseStore(pool),
		assistant:  assistant,
		sessions:   newSessionStore(),
		opts:       opts,
		log:        log,
	}
	s.sessions.startPurge(ctx)
	return s
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *Service) ListCategories(ctx context.Context) ([]CategoryResult, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*CategoryResult, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	return s.categories.Create(ctx, name)
}

func (s *Service) RenameCategory(ctx context.Context, id int, name string) error {
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	return s.categories.Rename(ctx, id, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.categories.Delete(ctx, id)
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *Service) ListProducts(ctx context.Context) ([]ProductResult, error) {
	return s.products.List(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*ProductResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, core.Product{
		Name:       input.Name,
		SaleValue:  input.SaleValue,
		LaborCost:  input.LaborCost,
		CategoryID: input.CategoryID,
	})
}

func (s *Service) UpdateProduct(ctx context.Context, id int, input ProductInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.products.Update(ctx, core.Product{
		ID:         id,
		Name:       input.Name,
		SaleValue:  input.SaleValue,
		LaborCost:  input.LaborCost,
		CategoryID: input.CategoryID,
	})
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	s.log.Info("deleting product",
		zap.Int("product_id", id),
		zap.String("policy", string(s.opts.DeletePolicy)))
	return s.products.Delete(ctx, id, s.opts.DeletePolicy)
}

// ── Production entries ────────────────────────────────────────────────────────

func (s *Service) GetProductionOverview(ctx context.Context) (*OverviewResult, error) {
	entries, products, expenses, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	r := core.BuildRangeReport(entries, products, expenses, core.RangeFilter{}, s.opts.Settings)
	return &OverviewResult{Lines: r.Lines, Totals: r.Totals}, nil
}

func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (*EntryResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.entries.Create(ctx, core.ProductionEntry{
		ProductID:     input.ProductID,
		Date:          input.Date,
		Quantity:      input.Quantity,
		InvoiceNumber: input.InvoiceNumber,
	})
}

func (s *Service) UpdateEntry(ctx context.Context, id int, input EntryInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.entries.Update(ctx, core.ProductionEntry{
		ID:            id,
		ProductID:     input.ProductID,
		Date:          input.Date,
		Quantity:      input.Quantity,
		InvoiceNumber: input.InvoiceNumber,
	})
}

func (s *Service) SetEntryPaid(ctx context.Context, id int, paid bool) error {
	return s.entries.SetPaid(ctx, id, paid)
}

func (s *Service) DeleteEntry(ctx context.Context, id int) error {
	return s.entries.Delete(ctx, id)
}

// ── Expenses ──────────────────────────────────────────────────────────────────

func (s *Service) ListExpenses(ctx context.Context) ([]ExpenseResult, error) {
	return s.expenses.List(ctx)
}

func (s *Service) CreateExpense(ctx context.Context, input ExpenseInput) (*ExpenseResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.expenses.Create(ctx, core.Expense{
		Description: input.Description,
		Value:       input.Value,
		Date:        input.Date,
	})
}

func (s *Service) DeleteExpense(ctx context.Context, id int) error {
	return s.expenses.Delete(ctx, id)
}

// ── Dashboard and reports ─────────────────────────────────────────────────────

func (s *Service) GetDashboard(ctx context.Context, year, month int) (*DashboardResult, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1..12, got %d", month)
	}
	entries, products, expenses, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	period := &core.Period{Year: year, Month: month}
	return &DashboardResult{
		Period:        *period,
		Totals:        core.PeriodTotals(entries, products, expenses, period, s.opts.Settings),
		ProductsCount: len(products),
		Series:        core.DailySeries(entries, products, period, s.opts.Settings),
		Distribution:  core.ProductDistribution(entries, products, period, core.DefaultDistributionLimit),
		Currency:      s.opts.Settings.Currency,
	}, nil
}

func (s *Service) GetReport(ctx context.Context, filter ReportFilter) (*ReportResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	entries, products, expenses, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	r := core.BuildRangeReport(entries, products, expenses, filter.toCore(), s.opts.Settings)
	return &ReportResult{Filter: filter, Lines: r.Lines, Totals: r.Totals}, nil
}

func (s *Service) ExportReportCSV(ctx context.Context, filter ReportFilter) ([]byte, error) {
	result, err := s.GetReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return export.ReportCSV(core.Report{Lines: result.Lines, Totals: result.Totals}, s.opts.Settings)
}

// ── Invoice import ────────────────────────────────────────────────────────────

func (s *Service) ImportInvoice(ctx context.Context, doc io.Reader) (*ImportReview, error) {
	parsed, err := invoice.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parse invoice: %w", err)
	}
	catalog, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	rec := core.ReconcileItems(parsed.Items, catalog, s.opts.Rounding)
	review := s.sessions.open(parsed.Meta, rec)
	s.log.Info("invoice parsed",
		zap.String("session_id", review.SessionID),
		zap.String("invoice_number", parsed.Meta.InvoiceNumber),
		zap.Int("matched", len(rec.Matched)),
		zap.Int("unmatched", len(rec.Unmatched)))
	return review, nil
}

func (s *Service) SetImportLabor(sessionID string, input ImportLaborInput) (*ImportReview, error) {
	return s.sessions.setLabor(sessionID, input)
}

// CommitImport persists the session's pending records: products first, then
// entries, each as an independent sequential request. The session moves to
// Committing atomically, so only one of two racing commits reaches the
// stores. A failure mid-way is returned as a CommitError naming what was
// already persisted; the session is closed either way because a blind
// retry would duplicate records.
func (s *Service) CommitImport(ctx context.Context, sessionID string) (*ImportCommit, error) {
	plan, err := s.sessions.beginCommit(sessionID)
	if err != nil {
		return nil, err
	}

	requests, err := core.ResolveUnmatched(plan.unmatched, plan.labor, plan.categoryID)
	if err != nil {
		s.sessions.remove(sessionID)
		return nil, err
	}

	commit := &ImportCommit{}
	var created []core.CreatedProduct
	for _, req := range requests {
		p, err := s.products.Create(ctx, core.Product{
			Name:       req.Name,
			SaleValue:  req.SaleValue,
			LaborCost:  req.LaborCost,
			CategoryID: req.CategoryID,
		})
		if err != nil {
			s.sessions.remove(sessionID)
			return nil, &CommitError{ProductsCreated: commit.ProductsCreated, Err: err}
		}
		commit.ProductsCreated++
		created = append(created, core.CreatedProduct{ProductID: p.ID, Quantity: req.Quantity})
	}

	for _, entry := range core.EntriesFromInvoice(plan.matched, created, plan.meta) {
		if _, err := s.entries.Create(ctx, entry); err != nil {
			s.sessions.remove(sessionID)
			return nil, &CommitError{
				ProductsCreated: commit.ProductsCreated,
				EntriesCreated:  commit.EntriesCreated,
				Err:             err,
			}
		}
		commit.EntriesCreated++
	}

	s.sessions.remove(sessionID)
	s.log.Info("invoice committed",
		zap.String("session_id", sessionID),
		zap.String("invoice_number", plan.meta.InvoiceNumber),
		zap.Int("products_created", commit.ProductsCreated),
		zap.Int("entries_created", commit.EntriesCreated))
	return commit, nil
}

func (s *Service) CancelImport(sessionID string) error {
	return s.sessions.cancel(sessionID)
}

// ── Assistant ─────────────────────────────────────────────────────────────────

func (s *Service) Ask(ctx context.Context, question string) (*AssistantAnswer, error) {
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if s.assistant == nil {
		return nil, ErrAssistantUnavailable
	}

	entries, products, expenses, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := core.BuildSnapshot(products, entries, expenses, s.opts.Settings, 10, 5)

	reply, err := s.assistant.Analyze(ctx, question, snapshot)
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}
	return &AssistantAnswer{Reply: *reply}, nil
}

// fetchAll loads the three collections every aggregation consumes.
func (s *Service) fetchAll(ctx context.Context) ([]core.ProductionEntry, []core.Product, []core.Expense, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, products, expenses, nil
}
