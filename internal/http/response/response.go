package response

import (
	"encoding/json"
	"net/http"

	"github.com/diagnosis/carshop-bookings/pkg/logger"
)

// Message is the body of every non-data response.
type Message struct {
	Message string `json:"message"`
}

type Success struct {
	Success bool `json:"success"`
}

const (
	MsgUnauthorized = "Unauthorized Access"
	MsgForbidden    = "Forbidden Access"
	MsgInternal     = "Internal Server Error"
	MsgBadJSON      = "Invalid JSON body"
)

// JSON writes v with the given status. A nil v is written as null.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, Message{Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter) {
	WriteMessage(w, http.StatusUnauthorized, MsgUnauthorized)
}

func Forbidden(w http.ResponseWriter) {
	WriteMessage(w, http.StatusForbidden, MsgForbidden)
}

// InternalError logs err against the request and answers with a generic body.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	WriteMessage(w, http.StatusInternalServerError, MsgInternal)
}
