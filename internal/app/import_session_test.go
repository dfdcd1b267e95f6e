package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"workshop-manager/internal/core"
)

func testReconciliation() core.Reconciliation {
	return core.Reconciliation{
		Matched: []core.MatchedItem{
			{ProductID: 1, ProductName: "Almofada", Quantity: 10},
		},
		Unmatched: []core.PendingItem{
			{Name: "Manta", UnitPrice: decimal.RequireFromString("80"), Quantity: 3},
			{Name: "Colcha", UnitPrice: decimal.RequireFromString("120"), Quantity: 2},
		},
	}
}

func TestSessionOpen(t *testing.T) {
	st := newSessionStore()
	meta := core.InvoiceMeta{InvoiceNumber: "1234", Date: "2025-03-10"}

	review := st.open(meta, testReconciliation())
	if review.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if review.State != StateAwaitingLabor {
		t.Fatalf("state = %s, want %s", review.State, StateAwaitingLabor)
	}
	if review.Meta != meta {
		t.Fatalf("Meta = %+v, want %+v", review.Meta, meta)
	}
	if len(review.Matched) != 1 || len(review.Unmatched) != 2 {
		t.Fatalf("matched/unmatched = %d/%d, want 1/2", len(review.Matched), len(review.Unmatched))
	}
	if len(review.MissingLabor) != 2 {
		t.Fatalf("MissingLabor = %v, want both pending names", review.MissingLabor)
	}
}

func TestSessionOpen_NoUnmatchedSkipsToReady(t *testing.T) {
	st := newSessionStore()
	rec := core.Reconciliation{
		Matched: []core.MatchedItem{{ProductID: 1, ProductName: "Almofada", Quantity: 5}},
	}

	review := st.open(core.InvoiceMeta{InvoiceNumber: "55"}, rec)
	if review.State != StateReadyToCommit {
		t.Fatalf("state = %s, want %s", review.State, StateReadyToCommit)
	}
	if len(review.MissingLabor) != 0 {
		t.Fatalf("MissingLabor = %v, want none", review.MissingLabor)
	}
}

func TestSessionSetLabor(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{InvoiceNumber: "1234"}, testReconciliation()).SessionID

	review, err := st.setLabor(id, ImportLaborInput{
		LaborCosts: map[string]decimal.Decimal{"Manta": decimal.RequireFromString("25")},
	})
	if err != nil {
		t.Fatalf("setLabor: %v", err)
	}
	if review.State != StateAwaitingLabor {
		t.Fatalf("state = %s, want %s while Colcha lacks labor", review.State, StateAwaitingLabor)
	}
	if len(review.MissingLabor) != 1 || review.MissingLabor[0] != "Colcha" {
		t.Fatalf("MissingLabor = %v, want [Colcha]", review.MissingLabor)
	}

	catID := 7
	review, err = st.setLabor(id, ImportLaborInput{
		LaborCosts: map[string]decimal.Decimal{"Colcha": decimal.Zero},
		CategoryID: &catID,
	})
	if err != nil {
		t.Fatalf("setLabor: %v", err)
	}
	if review.State != StateReadyToCommit {
		t.Fatalf("state = %s, want %s", review.State, StateReadyToCommit)
	}

	plan, err := st.beginCommit(id)
	if err != nil {
		t.Fatalf("beginCommit: %v", err)
	}
	if plan.categoryID == nil || *plan.categoryID != 7 {
		t.Fatalf("categoryID = %v, want 7", plan.categoryID)
	}
	if !plan.labor["Manta"].Equal(decimal.RequireFromString("25")) {
		t.Fatalf("labor[Manta] = %s, want 25", plan.labor["Manta"])
	}
}

func TestSessionSetLabor_Negative(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{}, testReconciliation()).SessionID

	_, err := st.setLabor(id, ImportLaborInput{
		LaborCosts: map[string]decimal.Decimal{"Manta": decimal.RequireFromString("-1")},
	})
	if !errors.Is(err, core.ErrNegativeLaborCost) {
		t.Fatalf("err = %v, want ErrNegativeLaborCost", err)
	}

	// The session survives a rejected input.
	review, err := st.setLabor(id, ImportLaborInput{
		LaborCosts: map[string]decimal.Decimal{"Manta": decimal.Zero},
	})
	if err != nil {
		t.Fatalf("setLabor after rejection: %v", err)
	}
	if review.State != StateAwaitingLabor {
		t.Fatalf("state = %s, want %s", review.State, StateAwaitingLabor)
	}
}

func TestSessionSetLabor_Concurrent(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{InvoiceNumber: "1234"}, testReconciliation()).SessionID

	var wg sync.WaitGroup
	for _, name := range []string{"Manta", "Colcha"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := st.setLabor(id, ImportLaborInput{
					LaborCosts: map[string]decimal.Decimal{name: decimal.NewFromInt(int64(i))},
				}); err != nil {
					t.Errorf("setLabor %s: %v", name, err)
					return
				}
			}
		}(name)
	}
	wg.Wait()

	if _, err := st.beginCommit(id); err != nil {
		t.Fatalf("beginCommit after concurrent labor: %v", err)
	}
}

func TestSessionCommit_SingleWinner(t *testing.T) {
	st := newSessionStore()
	rec := core.Reconciliation{
		Matched: []core.MatchedItem{{ProductID: 1, ProductName: "Almofada", Quantity: 5}},
	}
	id := st.open(core.InvoiceMeta{InvoiceNumber: "55"}, rec).SessionID

	const racers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.beginCommit(id); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			} else if !errors.Is(err, ErrSessionNotReady) {
				t.Errorf("err = %v, want ErrSessionNotReady", err)
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Fatalf("beginCommit succeeded %d times, want exactly 1", won)
	}
}

func TestSessionCommit_NotReady(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{}, testReconciliation()).SessionID

	if _, err := st.beginCommit(id); !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("err = %v, want ErrSessionNotReady while labor is missing", err)
	}
}

func TestSessionCancel(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{}, testReconciliation()).SessionID

	if err := st.cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := st.cancel(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after cancel", err)
	}
}

func TestSessionCancel_WhileCommitting(t *testing.T) {
	st := newSessionStore()
	rec := core.Reconciliation{
		Matched: []core.MatchedItem{{ProductID: 1, ProductName: "Almofada", Quantity: 5}},
	}
	id := st.open(core.InvoiceMeta{}, rec).SessionID

	if _, err := st.beginCommit(id); err != nil {
		t.Fatalf("beginCommit: %v", err)
	}
	if err := st.cancel(id); !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("err = %v, want ErrSessionNotReady while commit is in flight", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	st := newSessionStore()
	current := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return current }

	id := st.open(core.InvoiceMeta{InvoiceNumber: "1234"}, testReconciliation()).SessionID

	current = current.Add(sessionTTL - time.Minute)
	if _, err := st.setLabor(id, ImportLaborInput{}); err != nil {
		t.Fatalf("setLabor before TTL: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := st.setLabor(id, ImportLaborInput{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after TTL", err)
	}
}

func TestSessionRemove(t *testing.T) {
	st := newSessionStore()
	id := st.open(core.InvoiceMeta{}, testReconciliation()).SessionID

	st.remove(id)
	if _, err := st.setLabor(id, ImportLaborInput{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
