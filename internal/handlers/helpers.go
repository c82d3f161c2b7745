package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"catering-backend/internal/logging"
	"catering-backend/internal/middleware"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// statusFor maps service errors to HTTP statuses. Anything unrecognised is
// a 500 carrying the error text.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.For("HTTP").WithError(err).Errorf("%s %s", r.Method, r.URL.Path)
	}
	utils.Error(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathInt reads a numeric mux variable, writing a 400 when it is not one.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	return pathInt(w, r, "id")
}

// actorFrom describes the authenticated staff member for audit logging.
func actorFrom(r *http.Request) services.Actor {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	return services.Actor{UserID: id, Role: role, IP: middleware.ClientIP(r)}
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
