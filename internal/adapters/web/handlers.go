package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"workshop-manager/internal/app"
)

// Handler holds the ApplicationService the routes dispatch to.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		// Invoice upload carries a whole XML document; everything else is small JSON.
		r.Use(RequestBodyLimit(5 << 20)) // 5 MB

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Get("/api/categories", h.listCategories)
		r.Post("/api/categories", h.createCategory)
		r.Put("/api/categories/{id}", h.renameCategory)
		r.Delete("/api/categories/{id}", h.deleteCategory)

		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Put("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)

		// ── Production ────────────────────────────────────────────────────────
		r.Get("/api/entries", h.productionOverview)
		r.Post("/api/entries", h.createEntry)
		r.Put("/api/entries/{id}", h.updateEntry)
		r.Patch("/api/entries/{id}/paid", h.setEntryPaid)
		r.Delete("/api/entries/{id}", h.deleteEntry)

		// ── Expenses ──────────────────────────────────────────────────────────
		r.Get("/api/expenses", h.listExpenses)
		r.Post("/api/expenses", h.createExpense)
		r.Delete("/api/expenses/{id}", h.deleteExpense)

		// ── Dashboard and reports ─────────────────────────────────────────────
		r.Get("/api/dashboard", h.dashboard)
		r.Get("/api/report", h.report)
		r.Get("/api/report/export.csv", h.reportCSV)

		// ── Invoice import ────────────────────────────────────────────────────
		r.Post("/api/invoice/import", h.importInvoice)
		r.Post("/api/invoice/{session}/labor", h.setImportLabor)
		r.Post("/api/invoice/{session}/commit", h.commitImport)
		r.Post("/api/invoice/{session}/cancel", h.cancelImport)

		// ── Assistant ─────────────────────────────────────────────────────────
		r.Post("/api/assistant/ask", h.ask)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int. On failure it writes a
// 400 response and reports false.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid id: must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
