package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workshop-manager/internal/app"
	"workshop-manager/internal/core"
	"workshop-manager/internal/invoice"
)

// importInvoice handles POST /api/invoice/import. The body is the raw NF-e
// XML document; the response is a review session holding matched and
// unmatched items.
func (h *Handler) importInvoice(w http.ResponseWriter, r *http.Request) {
	review, err := h.svc.ImportInvoice(r.Context(), r.Body)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNoItems):
			writeError(w, r, "invoice has no items", "BAD_REQUEST", http.StatusBadRequest)
		default:
			writeError(w, r, "could not parse invoice: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		}
		return
	}
	writeJSONStatus(w, http.StatusCreated, review)
}

// setImportLabor handles POST /api/invoice/{session}/labor: supplies labor
// costs (and optionally a category) for the items the catalog did not match.
func (h *Handler) setImportLabor(w http.ResponseWriter, r *http.Request) {
	var input app.ImportLaborInput
	if !decodeJSON(w, r, &input) {
		return
	}
	review, err := h.svc.SetImportLabor(chi.URLParam(r, "session"), input)
	if err != nil {
		if errors.Is(err, core.ErrNegativeLaborCost) {
			writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, review)
}

// commitImport handles POST /api/invoice/{session}/commit. On a partial
// failure the response names what was already persisted so the operator can
// reconcile by hand instead of retrying blindly.
func (h *Handler) commitImport(w http.ResponseWriter, r *http.Request) {
	commit, err := h.svc.CommitImport(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		var commitErr *app.CommitError
		switch {
		case errors.As(err, &commitErr):
			writeJSONStatus(w, http.StatusInternalServerError, map[string]any{
				"error":            commitErr.Error(),
				"code":             "PARTIAL_COMMIT",
				"products_created": commitErr.ProductsCreated,
				"entries_created":  commitErr.EntriesCreated,
				"request_id":       requestIDFromContext(r.Context()),
			})
		case errors.Is(err, core.ErrMissingLaborCost):
			writeError(w, r, err.Error(), "MISSING_LABOR", http.StatusBadRequest)
		default:
			writeServiceError(w, r, err)
		}
		return
	}
	writeJSON(w, commit)
}

// cancelImport handles POST /api/invoice/{session}/cancel.
func (h *Handler) cancelImport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelImport(chi.URLParam(r, "session")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cancelled"})
}
