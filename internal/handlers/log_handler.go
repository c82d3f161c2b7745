package handlers

import (
	"net/http"

	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

// LogHandler serves the login audit and the admin action log.
type LogHandler struct {
	Service *services.UserService
}

func NewLogHandler(s *services.UserService) *LogHandler {
	return &LogHandler{Service: s}
}

func (h *LogHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListLoginLogs(r.Context(), utils.QueryInt(r, "limit", 100))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}

// ListActionLogs optionally filters by ?action_type=order_merge etc.
func (h *LogHandler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Service.ListActionLogs(r.Context(), r.URL.Query().Get("action_type"), utils.QueryInt(r, "limit", 100))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, logs)
}
