package handlers

import (
	"net/http"

	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

// AnalyticsHandler serves the dashboard. Dates are ?from=&to= (YYYY-MM-DD);
// both default to the current month.
type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(s *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.Service.Dashboard(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	points, err := h.Service.Monthly(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, points)
}

func (h *AnalyticsHandler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	top, err := h.Service.TopCustomers(r.Context(), utils.QueryInt(r, "limit", 10))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, top)
}

func (h *AnalyticsHandler) OrderProfitability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Service.OrderProfitability(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}
