package handlers

import (
	"io"
	"net/http"

	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

// maxWebhookBody caps what we read from Razorpay callbacks.
const maxWebhookBody = 1 << 20

type RazorpayHandler struct {
	Service *services.RazorpayService
	Portal  *services.CustomerPortalService
}

func NewRazorpayHandler(service *services.RazorpayService, portal *services.CustomerPortalService) *RazorpayHandler {
	return &RazorpayHandler{
		Service: service,
		Portal:  portal,
	}
}

// Status tells the portal whether to show the pay-online button.
// GET /api/payment/status
func (h *RazorpayHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": h.Service.Enabled()})
}

// CreateOrder opens a Razorpay order against one of the customer's bills
// POST /api/payment/create-order
func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOnlinePaymentRequest
	if !decode(w, r, &req) {
		return
	}

	customer, err := h.Portal.Me(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.Service.CreateOrder(r.Context(), customer, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// VerifyPayment checks the checkout signature and settles the bill
// POST /api/payment/verify
func (h *RazorpayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	txn, err := h.Service.VerifyPayment(r.Context(), customerID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, txn)
}

func (h *RazorpayHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Service.ListTransactions(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, txns)
}

// Webhook handles Razorpay server callbacks
// POST /webhooks/razorpay
func (h *RazorpayHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.Service.ProcessWebhook(r.Context(), body, r.Header.Get("X-Razorpay-Signature")); err != nil {
		logging.For("Razorpay").WithError(err).Warn("webhook rejected")
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
