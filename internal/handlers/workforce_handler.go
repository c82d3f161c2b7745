package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type WorkforceHandler struct {
	Service *services.WorkforceService
}

func NewWorkforceHandler(s *services.WorkforceService) *WorkforceHandler {
	return &WorkforceHandler{Service: s}
}

func (h *WorkforceHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req models.WorkforceMemberRequest
	if !decode(w, r, &req) {
		return
	}
	member, err := h.Service.CreateMember(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, member)
}

// GetMember includes the member's payment totals.
func (h *WorkforceHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	member, err := h.Service.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, member)
}

func (h *WorkforceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.ListMembers(r.Context(), queryBool(r, "active"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, members)
}

func (h *WorkforceHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.WorkforceMemberRequest
	if !decode(w, r, &req) {
		return
	}
	member, err := h.Service.UpdateMember(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, member)
}

func (h *WorkforceHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteMember(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkforceHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.WorkforcePaymentRequest
	if !decode(w, r, &req) {
		return
	}
	payment, err := h.Service.CreatePayment(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}

func (h *WorkforceHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payment, err := h.Service.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *WorkforceHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payments, err := h.Service.ListPayments(r.Context(), utils.QueryInt(r, "member_id", 0), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *WorkforceHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.WorkforcePaymentRequest
	if !decode(w, r, &req) {
		return
	}
	payment, err := h.Service.UpdatePayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *WorkforceHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeletePayment(r.Context(), actorFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
