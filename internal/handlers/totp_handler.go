package handlers

import (
	"net/http"

	"catering-backend/internal/middleware"
	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type TOTPHandler struct {
	TOTPService *services.TOTPService
	Users       *services.UserService
}

func NewTOTPHandler(totpService *services.TOTPService, users *services.UserService) *TOTPHandler {
	return &TOTPHandler{TOTPService: totpService, Users: users}
}

// SetupTOTP initiates 2FA setup - returns secret and QR code
func (h *TOTPHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user.TOTPEnabled {
		http.Error(w, "2FA is already enabled", http.StatusBadRequest)
		return
	}

	response, err := h.TOTPService.GenerateSetup(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, response)
}

func (h *TOTPHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.TOTPService.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"totp_enabled": true})
}

func (h *TOTPHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPDisableRequest
	if !decode(w, r, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.TOTPService.Disable(r.Context(), userID, req.Password, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"totp_enabled": false})
}
