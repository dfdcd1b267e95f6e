package web

import (
	"net/http"
	"strconv"
	"time"

	"workshop-manager/internal/app"
)

// ── Dashboard ─────────────────────────────────────────────────────────────────

// dashboard handles GET /api/dashboard?year=&month=. Absent parameters
// default to the current month.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, r, "invalid year: must be an integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, r, "invalid month: must be 1..12", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		month = parsed
	}

	result, err := h.svc.GetDashboard(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Reports ───────────────────────────────────────────────────────────────────

// reportFilterFromQuery builds a ReportFilter from query parameters. An
// invalid product_id writes a 400 and reports false.
func reportFilterFromQuery(w http.ResponseWriter, r *http.Request) (app.ReportFilter, bool) {
	filter := app.ReportFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if p := r.URL.Query().Get("product_id"); p != "" {
		id, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, r, "invalid product_id: must be an integer", "BAD_REQUEST", http.StatusBadRequest)
			return filter, false
		}
		filter.ProductID = id
	}
	if err := filter.Validate(); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return filter, false
	}
	return filter, true
}

// report handles GET /api/report?start_date=&end_date=&product_id=.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	filter, ok := reportFilterFromQuery(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetReport(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// reportCSV handles GET /api/report/export.csv with the same filter
// parameters as /api/report, streaming a spreadsheet-ready file.
func (h *Handler) reportCSV(w http.ResponseWriter, r *http.Request) {
	filter, ok := reportFilterFromQuery(w, r)
	if !ok {
		return
	}
	data, err := h.svc.ExportReportCSV(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="production-report.csv"`)
	_, _ = w.Write(data)
}
