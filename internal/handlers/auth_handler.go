package handlers

import (
	"net/http"

	"catering-backend/internal/auth"
	"catering-backend/internal/middleware"
	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type AuthHandler struct {
	Service    *services.UserService
	JWTManager *auth.JWTManager
}

func NewAuthHandler(s *services.UserService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{Service: s, JWTManager: jwtManager}
}

func (h *AuthHandler) startSession(w http.ResponseWriter, session *services.Session) {
	if session.RefreshToken != "" {
		h.JWTManager.SetSessionCookies(w, session.Response.AccessToken, session.RefreshToken)
	}
	utils.JSON(w, http.StatusOK, session.Response)
}

// Login checks credentials. With 2FA on, the response carries a temp token
// and no cookies are set until /auth/2fa/verify succeeds.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.Service.Login(r.Context(), &req, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.startSession(w, session)
}

func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.Service.Complete2FA(r.Context(), &req, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.startSession(w, session)
}

// Refresh rotates both cookies using the refresh cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Refresh(r.Context(), auth.TokenFromRequest(r, auth.RefreshCookieName))
	if err != nil {
		h.JWTManager.ClearSessionCookies(w)
		writeError(w, r, err)
		return
	}
	h.startSession(w, session)
}

// Logout revokes the user's refresh tokens when the refresh cookie is still
// valid, and always clears the cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r, auth.RefreshCookieName); token != "" {
		if claims, err := h.JWTManager.ValidateRefreshToken(token); err == nil {
			if err := h.Service.Logout(r.Context(), claims.UserID); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}
	h.JWTManager.ClearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// ChangePassword revokes every session of the user, this one included.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.Service.ChangePassword(r.Context(), userID, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.JWTManager.ClearSessionCookies(w)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Password changed. Please sign in again."})
}
