package middleware

import (
	"context"
	"net/http"

	"github.com/diagnosis/carshop-bookings/internal/http/response"
	"github.com/diagnosis/carshop-bookings/pkg/auth"
	"github.com/diagnosis/carshop-bookings/pkg/logger"
	mw "github.com/diagnosis/carshop-bookings/pkg/middleware"
)

type ctxKey string

const CtxClaim ctxKey = "claim"

// Verifier checks a token and returns the identity it carries.
type Verifier interface {
	Verify(token string) (*auth.Claim, error)
}

// RequireToken rejects requests without a valid session cookie with 401.
// The reason is logged but never returned to the caller.
func RequireToken(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := auth.TokenFromRequest(r)
			if !ok {
				logger.DebugContext(r.Context(), "Rejected request without session cookie", "path", r.URL.Path)
				response.Unauthorized(w)
				return
			}
			claim, err := v.Verify(raw)
			if err != nil {
				logger.DebugContext(r.Context(), "Rejected invalid session token", "path", r.URL.Path, "error", err)
				response.Unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), CtxClaim, claim)
			if email, ok := claim.Identity(); ok {
				mw.SetIdentity(r, email)
				ctx = context.WithValue(ctx, logger.EmailKey, email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireEmailMatch answers 403 unless the authenticated email is a non-empty
// string equal to the query parameter. It must run after RequireToken.
func RequireEmailMatch(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim := Claim(r)
			if claim == nil {
				response.Unauthorized(w)
				return
			}
			email, ok := claim.Identity()
			if requested := r.URL.Query().Get(param); !ok || email != requested {
				logger.InfoContext(r.Context(), "Ownership check failed", "requested", requested)
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Claim(r *http.Request) *auth.Claim {
	v := r.Context().Value(CtxClaim)
	if v == nil {
		return nil
	}
	return v.(*auth.Claim)
}
