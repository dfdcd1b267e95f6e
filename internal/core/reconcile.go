package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ── Invoice reconciliation ────────────────────────────────────────────────────
//
// Matches parsed invoice line items against the product catalog. Items that
// match an existing product become production entry requests directly;
// items that do not become product creation candidates that a human must
// complete with a labor cost (invoices never carry one) before anything is
// persisted.

var (
	// ErrMissingLaborCost is returned when a pending item is resolved
	// without a labor cost having been supplied for it.
	ErrMissingLaborCost = errors.New("labor cost not supplied for pending item")

	// ErrNegativeLaborCost is returned when a supplied labor cost is negative.
	ErrNegativeLaborCost = errors.New("labor cost must be zero or positive")
)

// RoundingMode controls how fractional invoice quantities collapse to whole
// units. The historical behavior is floor (truncation); nearest rounding is
// available for invoices that legitimately carry fractional quantities.
type RoundingMode string

const (
	RoundFloor   RoundingMode = "floor"
	RoundNearest RoundingMode = "nearest"
)

// InvoiceItem is one parsed line item of an incoming invoice document.
type InvoiceItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// InvoiceMeta carries the header fields every entry created from one
// invoice shares.
type InvoiceMeta struct {
	InvoiceNumber string `json:"invoice_number"`
	Date          string `json:"date"`
}

// MatchedItem is an invoice item resolved to an existing catalog product.
type MatchedItem struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// PendingItem is an invoice item with no catalog match. It keeps the raw
// name and unit price so a human can review it and supply the labor cost.
type PendingItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Reconciliation partitions an invoice's items into matched and unmatched.
// Every input item lands in exactly one of the two lists.
type Reconciliation struct {
	Matched   []MatchedItem `json:"matched"`
	Unmatched []PendingItem `json:"unmatched"`
}

// ProductRequest is a creation request for a product discovered on an
// invoice, plus the invoiced quantity for the follow-on production entry.
type ProductRequest struct {
	Name       string          `json:"name"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	LaborCost  decimal.Decimal `json:"labor_cost"`
	CategoryID *int            `json:"category_id,omitempty"`
	Quantity   int             `json:"quantity"`
}

// CreatedProduct ties a persisted product id back to its invoiced quantity.
type CreatedProduct struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// normalizeName is the matching key: whitespace-trimmed, case-folded.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func wholeQuantity(q decimal.Decimal, mode RoundingMode) int {
	if mode == RoundNearest {
		return int(q.Round(0).IntPart())
	}
	return int(q.Floor().IntPart())
}

// ReconcileItems matches each item against the catalog by normalized name.
// " Almofada " matches a product named "almofada". Fractional quantities
// collapse per mode on both sides of the partition. Unmatched items sharing
// one normalized name merge into a single pending item with their summed
// quantity (the first occurrence's name and unit price win), so each
// pending name needs exactly one labor cost and creates exactly one product.
func ReconcileItems(items []InvoiceItem, catalog []Product, mode RoundingMode) Reconciliation {
	byName := make(map[string]*Product, len(catalog))
	for i := range catalog {
		byName[normalizeName(catalog[i].Name)] = &catalog[i]
	}

	var rec Reconciliation
	pendingIdx := make(map[string]int)
	for _, item := range items {
		qty := wholeQuantity(item.Quantity, mode)
		key := normalizeName(item.Name)
		if product, ok := byName[key]; ok {
			rec.Matched = append(rec.Matched, MatchedItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
			})
			continue
		}
		if i, ok := pendingIdx[key]; ok {
			rec.Unmatched[i].Quantity += qty
			continue
		}
		pendingIdx[key] = len(rec.Unmatched)
		rec.Unmatched = append(rec.Unmatched, PendingItem{
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.UnitPrice,
			Quantity:  qty,
		})
	}
	return rec
}

// ResolveUnmatched turns pending items into product creation requests using
// the human-supplied labor costs (keyed by pending item name) and target
// category. Every pending item must have a non-negative labor cost; the
// invoice unit price becomes the sale value.
func ResolveUnmatched(pending []PendingItem, laborByName map[string]decimal.Decimal, categoryID *int) ([]ProductRequest, error) {
	requests := make([]ProductRequest, 0, len(pending))
	for _, item := range pending {
		labor, ok := laborByName[item.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingLaborCost, item.Name)
		}
		if labor.IsNegative() {
			return nil, fmt.Errorf("%w: %q", ErrNegativeLaborCost, item.Name)
		}
		requests = append(requests, ProductRequest{
			Name:       item.Name,
			SaleValue:  item.UnitPrice,
			LaborCost:  labor,
			CategoryID: categoryID,
			Quantity:   item.Quantity,
		})
	}
	return requests, nil
}

// EntriesFromInvoice produces the unpersisted production entries for one
// invoice commit: one per matched item plus one per newly created product,
// all stamped with the invoice date and number, unpaid. Items that never
// received a labor cost do not reach this step and yield no entry.
func EntriesFromInvoice(matched []MatchedItem, created []CreatedProduct, meta InvoiceMeta) []ProductionEntry {
	entries := make([]ProductionEntry, 0, len(matched)+len(created))
	for _, m := range matched {
		entries = append(entries, ProductionEntry{
			ProductID:     m.ProductID,
			Date:          meta.Date,
			Quantity:      m.Quantity,
			InvoiceNumber: meta.InvoiceNumber,
		})
	}
	for _, c := range created {
		entries = append(entries, ProductionEntry{
			ProductID:     c.ProductID,
			Date:          meta.Date,
			Quantity:      c.Quantity,
			InvoiceNumber: meta.InvoiceNumber,
		})
	}
	return entries
}
