package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/internal/timeutil"
	"catering-backend/pkg/utils"
)

type ExpenseHandler struct {
	Service *services.ExpenseService
}

func NewExpenseHandler(s *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Service: s}
}

func expenseFilter(r *http.Request) models.ExpenseFilter {
	q := r.URL.Query()
	return models.ExpenseFilter{
		Category: q.Get("category"),
		OrderID:  utils.QueryInt(r, "order_id", 0),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.ExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	expense, err := h.Service.CreateExpense(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	expense, err := h.Service.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Service.ListExpenses(r.Context(), expenseFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	expense, err := h.Service.UpdateExpense(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteExpense(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV takes the same filters as ListExpenses.
func (h *ExpenseHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.ExportCSV(r.Context(), expenseFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.Attachment(w, "text/csv", "expenses-"+timeutil.FormatIST(timeutil.Now(), "2006-01-02")+".csv", data)
}

func (h *ExpenseHandler) Totals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	totals, err := h.Service.TotalsByCategory(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, totals)
}
