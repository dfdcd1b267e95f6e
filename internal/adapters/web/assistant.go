package web

import (
	"errors"
	"net/http"

	"workshop-manager/internal/app"
)

type askRequest struct {
	Question string `json:"question"`
}

// ask handles POST /api/assistant/ask. When no assistant is configured the
// client gets a chat-visible explanation rather than a bare 500.
func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeError(w, r, "question is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, app.ErrAssistantUnavailable) {
			writeError(w, r, "the assistant is not configured; set OPENAI_API_KEY to enable it",
				"ASSISTANT_UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, answer)
}
