package auth

import "net/http"

const CookieName = "token"

// tokenCookie builds the session cookie. Production serves a cross-origin
// frontend over TLS, so it needs Secure with SameSite=None; local development
// runs over plain HTTP and cannot use Secure cookies.
func tokenCookie(value string, production bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// SetTokenCookie attaches a session-lifetime cookie carrying token.
func SetTokenCookie(w http.ResponseWriter, token string, production bool) {
	http.SetCookie(w, tokenCookie(token, production))
}

// ClearTokenCookie expires the session cookie immediately. Clearing an
// already-cleared cookie is harmless.
func ClearTokenCookie(w http.ResponseWriter, production bool) {
	c := tokenCookie("", production)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// TokenFromRequest reports the cookie value, or false when it is absent or empty.
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
