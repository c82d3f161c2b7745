package middleware

import (
	"context"
	"net/http"

	"catering-backend/internal/auth"
	"catering-backend/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const EmailKey contextKey = "email"
const RoleKey contextKey = "role"
const CustomerIDKey contextKey = "customer_id"

// UserLookup loads the current state of a staff account.
type UserLookup interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// authenticate validates the access token (header or cookie) and reloads the
// user, so suspension and logout apply before the token expires.
func (m *AuthMiddleware) authenticate(r *http.Request) (*models.User, int, string) {
	token := auth.TokenFromRequest(r, auth.AccessCookieName)
	if token == "" {
		return nil, http.StatusUnauthorized, "Authorization required"
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}

	user, err := m.users.Get(r.Context(), claims.UserID)
	if err != nil {
		return nil, http.StatusUnauthorized, "User not found"
	}
	if !user.IsActive {
		return nil, http.StatusForbidden, "Account suspended. Please contact administrator."
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, http.StatusUnauthorized, "Session revoked"
	}
	return user, 0, ""
}

func withUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	ctx = context.WithValue(ctx, EmailKey, user.Email)
	return context.WithValue(ctx, RoleKey, user.Role)
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, status, msg := m.authenticate(r)
		if user == nil {
			http.Error(w, msg, status)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireRole ensures the user has one of the allowed roles. Requests that
// already passed Authenticate are not looked up again.
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				user, status, msg := m.authenticate(r)
				if user == nil {
					http.Error(w, msg, status)
					return
				}
				r = r.WithContext(withUser(r.Context(), user))
				role = user.Role
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireAdmin is a middleware that ensures the user has admin role
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)(next)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// CustomerAuthMiddleware guards the customer portal.
type CustomerAuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewCustomerAuthMiddleware(jwtManager *auth.JWTManager) *CustomerAuthMiddleware {
	return &CustomerAuthMiddleware{jwtManager: jwtManager}
}

func (m *CustomerAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r, auth.CustomerCookieName)
		if token == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		claims, err := m.jwtManager.ValidateCustomerToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CustomerIDKey, claims.CustomerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetCustomerIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(CustomerIDKey).(int)
	return id, ok
}
