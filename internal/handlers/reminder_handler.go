package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/internal/timeutil"
	"catering-backend/pkg/utils"
)

type ReminderHandler struct {
	Service *services.NotificationService
}

func NewReminderHandler(s *services.NotificationService) *ReminderHandler {
	return &ReminderHandler{Service: s}
}

// SendPaymentReminders texts customers with outstanding balances.
func (h *ReminderHandler) SendPaymentReminders(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentReminderRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.SendPaymentReminders(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// SendSessionReminders runs tomorrow's session reminders on demand.
func (h *ReminderHandler) SendSessionReminders(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.SendSessionReminders(r.Context(), timeutil.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"sessions": n})
}
