package handlers

import (
	"net/http"

	"github.com/diagnosis/carshop-bookings/internal/http/response"
	"github.com/diagnosis/carshop-bookings/pkg/auth"
	"github.com/diagnosis/carshop-bookings/pkg/logger"
)

// TokenIssuer mints a session token for a claim.
type TokenIssuer interface {
	Issue(claim auth.Claim) (string, error)
}

type AuthHandler struct {
	Issuer     TokenIssuer
	Production bool
}

func NewAuthHandler(issuer TokenIssuer, production bool) *AuthHandler {
	return &AuthHandler{Issuer: issuer, Production: production}
}

// Login signs whatever identity the caller presents; the claim is not checked
// against any user store.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if err := decodeBody(r, &body, true); err != nil {
		response.BadRequest(w, response.MsgBadJSON)
		return
	}

	claim := auth.NewClaim(body)
	token, err := h.Issuer.Issue(claim)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "Issued session token", "email", claim.Email)
	auth.SetTokenCookie(w, token, h.Production)
	response.OK(w, response.Success{Success: true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	_ = decodeBody(r, &body, true)
	logger.InfoContext(r.Context(), "Logging out", "email", body.Email)

	auth.ClearTokenCookie(w, h.Production)
	response.OK(w, response.Success{Success: true})
}
