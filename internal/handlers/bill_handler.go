package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type BillHandler struct {
	Service *services.BillService
}

func NewBillHandler(s *services.BillService) *BillHandler {
	return &BillHandler{Service: s}
}

func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Service.ListBills(r.Context(), models.BillFilter{
		Status:     r.URL.Query().Get("status"),
		CustomerID: utils.QueryInt(r, "customer_id", 0),
		Limit:      utils.QueryInt(r, "limit", 100),
		Offset:     utils.QueryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bills)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.Service.GetBill(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.RecordPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	bill, err := h.Service.RecordPayment(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// EditPayment rewrites the history entry at {index} and replays the ledger.
func (h *BillHandler) EditPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	var req models.EditPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	bill, err := h.Service.EditPayment(r.Context(), actorFrom(r), id, index, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	bill, err := h.Service.DeletePayment(r.Context(), actorFrom(r), id, index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pdf, bill, err := h.Service.BillPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.Attachment(w, "application/pdf", bill.BillNumber+".pdf", pdf)
}

func (h *BillHandler) EmailBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.EmailBillRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Service.EmailBill(r.Context(), id, req.To); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Bill sent"})
}

// ArchiveBill uploads the bill PDF to document storage and returns its key.
func (h *BillHandler) ArchiveBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	key, err := h.Service.ArchiveBill(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"key": key})
}
