package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ── Assistant snapshot ────────────────────────────────────────────────────────

// SnapshotProduct is the unit economics of one catalog product.
type SnapshotProduct struct {
	Name       string          `json:"name"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	LaborCost  decimal.Decimal `json:"labor_cost"`
	UnitMargin decimal.Decimal `json:"unit_margin"`
}

// SnapshotEntry is a recent production entry with its product resolved.
type SnapshotEntry struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Date     string `json:"date"`
}

// Snapshot is the JSON-serializable business summary handed to the language
// model. It carries bounded recent activity plus the full per-product unit
// economics and the tax rate; the engine never interprets what the model
// says about it.
type Snapshot struct {
	TotalProducts  int               `json:"total_products"`
	Products       []SnapshotProduct `json:"products"`
	RecentEntries  []SnapshotEntry   `json:"recent_entries"`
	RecentExpenses []Expense         `json:"recent_expenses"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	Currency       string            `json:"currency"`
}

// BuildSnapshot assembles the assistant context. Recent entries and
// expenses are the newest maxEntries/maxExpenses by date; entries whose
// product was removed are reported under the sentinel name.
func BuildSnapshot(products []Product, entries []ProductionEntry, expenses []Expense, s Settings, maxEntries, maxExpenses int) Snapshot {
	snap := Snapshot{
		TotalProducts: len(products),
		TaxRate:       s.TaxRate,
		Currency:      s.Currency,
	}

	for _, p := range products {
		snap.Products = append(snap.Products, SnapshotProduct{
			Name:       p.Name,
			SaleValue:  p.SaleValue,
			LaborCost:  p.LaborCost,
			UnitMargin: p.UnitMargin(),
		})
	}

	recent := make([]ProductionEntry, len(entries))
	copy(recent, entries)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date > recent[j].Date })
	if maxEntries > 0 && len(recent) > maxEntries {
		recent = recent[:maxEntries]
	}
	for _, e := range recent {
		name := RemovedProductName
		if p := productByID(products, e.ProductID); p != nil {
			name = p.Name
		}
		snap.RecentEntries = append(snap.RecentEntries, SnapshotEntry{
			Product:  name,
			Quantity: e.Quantity,
			Date:     e.Date,
		})
	}

	recentEx := make([]Expense, len(expenses))
	copy(recentEx, expenses)
	sort.SliceStable(recentEx, func(i, j int) bool { return recentEx[i].Date > recentEx[j].Date })
	if maxExpenses > 0 && len(recentEx) > maxExpenses {
		recentEx = recentEx[:maxExpenses]
	}
	snap.RecentExpenses = recentEx

	return snap
}

// AssistantReply is the structured answer the language model returns.
type AssistantReply struct {
	Answer     string   `json:"answer" jsonschema_description:"The executive answer to the user's question, grounded in the provided business data"`
	Highlights []string `json:"highlights" jsonschema_description:"Up to three short data points from the snapshot that support the answer"`
}
