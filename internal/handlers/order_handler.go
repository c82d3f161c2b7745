package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type OrderHandler struct {
	Service *services.OrderService
	Bills   *services.BillService
}

func NewOrderHandler(s *services.OrderService, bills *services.BillService) *OrderHandler {
	return &OrderHandler{Service: s, Bills: bills}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), actorFrom(r), &req, models.OrderSourceAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// orderFilter reads ?status, customer_id, source, from, to, search, limit
// and offset.
func orderFilter(r *http.Request) models.OrderFilter {
	q := r.URL.Query()
	return models.OrderFilter{
		Status:     q.Get("status"),
		CustomerID: utils.QueryInt(r, "customer_id", 0),
		Source:     q.Get("source"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Search:     q.Get("search"),
		Limit:      utils.QueryInt(r, "limit", 100),
		Offset:     utils.QueryInt(r, "offset", 0),
	}
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context(), orderFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Service.UpdateOrder(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Service.UpdateStatus(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteOrder(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) SplitByDate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SplitByDateRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.SplitByDate(r.Context(), actorFrom(r), id, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *OrderHandler) SplitBySession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SplitBySessionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.SplitBySession(r.Context(), actorFrom(r), id, req.SessionKeys)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *OrderHandler) MergeOrders(w http.ResponseWriter, r *http.Request) {
	var req models.MergeOrdersRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.Service.MergeOrders(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// GetOrderBill returns the bill attached to the order.
func (h *OrderHandler) GetOrderBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.Bills.GetBillByOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// OrderSheet is the kitchen/event sheet PDF for an order.
func (h *OrderHandler) OrderSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pdf, order, err := h.Bills.OrderSheetPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.Attachment(w, "application/pdf", order.OrderNumber+"-sheet.pdf", pdf)
}
