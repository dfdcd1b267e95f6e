package web

import (
	"net/http"

	"workshop-manager/internal/app"
)

// ── Production entries ────────────────────────────────────────────────────────

// productionOverview handles GET /api/entries: every entry joined with its
// product plus grand totals, for the production screen.
func (h *Handler) productionOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.GetProductionOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, overview)
}

// createEntry handles POST /api/entries.
func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var input app.EntryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	entry, err := h.svc.CreateEntry(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, entry)
}

// updateEntry handles PUT /api/entries/{id}.
func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input app.EntryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.UpdateEntry(r.Context(), id, input); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "updated"})
}

type paidRequest struct {
	Paid bool `json:"paid"`
}

// setEntryPaid handles PATCH /api/entries/{id}/paid.
func (h *Handler) setEntryPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req paidRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetEntryPaid(r.Context(), id, req.Paid); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"status": "updated", "paid": req.Paid})
}

// deleteEntry handles DELETE /api/entries/{id}.
func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// ── Expenses ──────────────────────────────────────────────────────────────────

// listExpenses handles GET /api/expenses.
func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []app.ExpenseResult{}
	}
	writeJSON(w, expenses)
}

// createExpense handles POST /api/expenses.
func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var input app.ExpenseInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	expense, err := h.svc.CreateExpense(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, expense)
}

// deleteExpense handles DELETE /api/expenses/{id}.
func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}
