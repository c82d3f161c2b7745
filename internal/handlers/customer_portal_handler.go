package handlers

import (
	"net/http"

	"catering-backend/internal/auth"
	"catering-backend/internal/middleware"
	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type CustomerPortalHandler struct {
	CustomerPortalService *services.CustomerPortalService
	Bills                 *services.BillService
	JWTManager            *auth.JWTManager
}

func NewCustomerPortalHandler(
	customerPortalService *services.CustomerPortalService,
	bills *services.BillService,
	jwtManager *auth.JWTManager,
) *CustomerPortalHandler {
	return &CustomerPortalHandler{
		CustomerPortalService: customerPortalService,
		Bills:                 bills,
		JWTManager:            jwtManager,
	}
}

func customerID(r *http.Request) int {
	id, _ := middleware.GetCustomerIDFromContext(r.Context())
	return id
}

func (h *CustomerPortalHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerSignupRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.CustomerPortalService.Signup(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.JWTManager.SetCustomerCookie(w, resp.Token)
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *CustomerPortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerLoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.CustomerPortalService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.JWTManager.SetCustomerCookie(w, resp.Token)
	utils.JSON(w, http.StatusOK, resp)
}

// SendOTP texts a verification code used to claim an existing record at
// signup or to sign in without a password.
func (h *CustomerPortalHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.CustomerPortalService.RequestOTP(r.Context(), req.Phone, middleware.ClientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
}

func (h *CustomerPortalHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.CustomerPortalService.LoginWithOTP(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.JWTManager.SetCustomerCookie(w, resp.Token)
	utils.JSON(w, http.StatusOK, resp)
}

func (h *CustomerPortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.JWTManager.ClearCustomerCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerPortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, err := h.CustomerPortalService.Me(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

// SubmitOrder creates a pending order on behalf of the signed-in customer.
func (h *CustomerPortalHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PortalOrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.CustomerPortalService.SubmitOrder(r.Context(), customerID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

func (h *CustomerPortalHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.CustomerPortalService.MyOrders(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *CustomerPortalHandler) MyOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.CustomerPortalService.MyOrder(r.Context(), customerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

func (h *CustomerPortalHandler) MyBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.CustomerPortalService.MyBills(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bills)
}

func (h *CustomerPortalHandler) MyBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.CustomerPortalService.MyBill(r.Context(), customerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// MyBillPDF checks ownership before rendering.
func (h *CustomerPortalHandler) MyBillPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.CustomerPortalService.MyBill(r.Context(), customerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	pdf, bill, err := h.Bills.BillPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.Attachment(w, "application/pdf", bill.BillNumber+".pdf", pdf)
}
