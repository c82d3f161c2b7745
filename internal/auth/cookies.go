package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessCookieName   = "access_token"
	RefreshCookieName  = "refresh_token"
	CustomerCookieName = "customer_token"
)

func (j *JWTManager) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   j.cfg.JWT.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   j.cfg.JWT.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookies writes the access and refresh cookies. The refresh
// cookie is scoped to the auth routes.
func (j *JWTManager) SetSessionCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, j.cookie(AccessCookieName, access, "/", j.AccessTTL()))
	http.SetCookie(w, j.cookie(RefreshCookieName, refresh, "/auth", j.RefreshTTL()))
}

func (j *JWTManager) ClearSessionCookies(w http.ResponseWriter) {
	access := j.cookie(AccessCookieName, "", "/", 0)
	access.MaxAge = -1
	refresh := j.cookie(RefreshCookieName, "", "/auth", 0)
	refresh.MaxAge = -1
	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

// SetCustomerCookie writes the portal session cookie.
func (j *JWTManager) SetCustomerCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, j.cookie(CustomerCookieName, token, "/", time.Duration(j.cfg.JWT.CustomerTTLHours)*time.Hour))
}

func (j *JWTManager) ClearCustomerCookie(w http.ResponseWriter) {
	c := j.cookie(CustomerCookieName, "", "/", 0)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// TokenFromRequest returns the bearer token, falling back to the named cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
