package handlers

import (
	"net/http"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/http/middleware"
	"github.com/diagnosis/carshop-bookings/internal/http/response"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/diagnosis/carshop-bookings/pkg/events"
	"github.com/diagnosis/carshop-bookings/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type BookingsHandler struct {
	Bookings repo.BookingRepo
	Verifier middleware.Verifier
	Events   events.Publisher
}

func NewBookingsHandler(bookings repo.BookingRepo, verifier middleware.Verifier, publisher events.Publisher) *BookingsHandler {
	return &BookingsHandler{Bookings: bookings, Verifier: verifier, Events: publisher}
}

// Routes mounts the booking endpoints. Only the listing is protected; create,
// delete and status update carry no identity check.
// TODO: decide whether DELETE and PUT should require the owner's session.
func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.With(
		middleware.RequireToken(h.Verifier),
		middleware.RequireEmailMatch("email"),
	).Get("/", h.list)
	r.Delete("/", h.deleteAll)
	r.Delete("/{bookingId}", h.delete)
	r.Put("/{bookId}", h.updateStatus)
	return r
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var b domain.Booking
	if err := decodeBody(r, &b, false); err != nil {
		response.BadRequest(w, response.MsgBadJSON)
		return
	}
	b.ID = ""

	res, err := h.Bookings.Insert(r.Context(), &b)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	publish(r.Context(), h.Events, events.BookingCreated, events.BookingCreatedEvent{
		BookingID: res.InsertedID,
		Email:     b.Email,
		ServiceID: b.ServiceID,
		Status:    b.Status,
		CreatedAt: time.Now().UTC(),
	})
	response.OK(w, res)
}

// list runs behind RequireToken and RequireEmailMatch, so the query email is
// the caller's own.
func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	logger.DebugContext(r.Context(), "Listing bookings", "email", email)

	bookings, err := h.Bookings.List(r.Context(), domain.BookingFilter{Email: email})
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	response.OK(w, bookings)
}

func (h *BookingsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")
	res, err := h.Bookings.DeleteByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	if res.DeletedCount > 0 {
		publish(r.Context(), h.Events, events.BookingDeleted, events.BookingDeletedEvent{
			BookingID: id,
			Count:     res.DeletedCount,
			DeletedAt: time.Now().UTC(),
		})
	}
	response.OK(w, res)
}

func (h *BookingsHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Bookings.DeleteAll(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	logger.WarnContext(r.Context(), "Deleted all bookings", "count", res.DeletedCount)
	publish(r.Context(), h.Events, events.BookingsPurged, events.BookingDeletedEvent{
		Count:     res.DeletedCount,
		DeletedAt: time.Now().UTC(),
	})
	response.OK(w, res)
}

func (h *BookingsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusUpdate
	if err := decodeBody(r, &req, true); err != nil {
		response.BadRequest(w, response.MsgBadJSON)
		return
	}

	id := chi.URLParam(r, "bookId")
	res, err := h.Bookings.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	if res.MatchedCount > 0 {
		publish(r.Context(), h.Events, events.BookingStatusUpdated, events.BookingStatusUpdatedEvent{
			BookingID: id,
			Status:    req.Status,
			Modified:  res.ModifiedCount > 0,
			UpdatedAt: time.Now().UTC(),
		})
	}
	response.OK(w, res)
}
