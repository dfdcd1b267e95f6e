package core_test

import (
	"encoding/json"
	"testing"

	"workshop-manager/internal/core"
)

func TestBuildSnapshot(t *testing.T) {
	products := testCatalog()
	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-01", Quantity: 1},
		{ID: 2, ProductID: 1, Date: "2025-03-15", Quantity: 2},
		{ID: 3, ProductID: 99, Date: "2025-03-20", Quantity: 3},
		{ID: 4, ProductID: 2, Date: "2025-02-10", Quantity: 4},
	}
	expenses := []core.Expense{
		{ID: 1, Description: "Rent", Value: dec("800"), Date: "2025-03-01"},
		{ID: 2, Description: "Thread", Value: dec("40"), Date: "2025-03-12"},
	}

	snap := core.BuildSnapshot(products, entries, expenses, core.DefaultSettings(), 2, 1)

	if snap.TotalProducts != 3 {
		t.Errorf("total products = %d, want 3", snap.TotalProducts)
	}
	if len(snap.Products) != 3 {
		t.Fatalf("products = %d, want 3", len(snap.Products))
	}
	if !snap.Products[0].UnitMargin.Equal(dec("30")) {
		t.Errorf("unit margin = %s, want 30", snap.Products[0].UnitMargin)
	}

	if len(snap.RecentEntries) != 2 {
		t.Fatalf("recent entries = %d, want bounded 2", len(snap.RecentEntries))
	}
	// Newest first; the newest references a removed product.
	if snap.RecentEntries[0].Product != core.RemovedProductName {
		t.Errorf("recent[0].Product = %q, want sentinel", snap.RecentEntries[0].Product)
	}
	if snap.RecentEntries[1].Date != "2025-03-15" {
		t.Errorf("recent[1].Date = %q, want 2025-03-15", snap.RecentEntries[1].Date)
	}

	if len(snap.RecentExpenses) != 1 || snap.RecentExpenses[0].Description != "Thread" {
		t.Errorf("recent expenses = %+v, want newest (Thread)", snap.RecentExpenses)
	}

	if !snap.TaxRate.Equal(core.DefaultTaxRate) {
		t.Errorf("tax rate = %s, want %s", snap.TaxRate, core.DefaultTaxRate)
	}

	// The snapshot's whole purpose is to be serialized for the model.
	if _, err := json.Marshal(snap); err != nil {
		t.Errorf("snapshot not JSON-serializable: %v", err)
	}
}

func TestBuildSnapshot_DoesNotMutateInputs(t *testing.T) {
	entries := []core.ProductionEntry{
		{ID: 1, ProductID: 1, Date: "2025-03-01", Quantity: 1},
		{ID: 2, ProductID: 1, Date: "2025-03-15", Quantity: 2},
	}
	core.BuildSnapshot(testCatalog(), entries, nil, core.DefaultSettings(), 1, 1)
	if entries[0].ID != 1 || entries[1].ID != 2 {
		t.Errorf("input slice reordered: %+v", entries)
	}
}
