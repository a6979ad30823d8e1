package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diagnosis/carshop-bookings/internal/http/response"
	"github.com/diagnosis/carshop-bookings/pkg/events"
	"github.com/diagnosis/carshop-bookings/pkg/logger"
)

// Root answers the liveness check at "/".
func Root(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.Message{Message: "Server is running"})
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// publish sends an event after a successful write. Failures are logged and
// never change the response.
func publish(ctx context.Context, p events.Publisher, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
