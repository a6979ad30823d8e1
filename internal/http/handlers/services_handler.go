package handlers

import (
	"net/http"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/http/response"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/diagnosis/carshop-bookings/pkg/events"
	"github.com/go-chi/chi/v5"
)

type ServicesHandler struct {
	Services repo.ServiceRepo
	Events   events.Publisher
}

func NewServicesHandler(services repo.ServiceRepo, publisher events.Publisher) *ServicesHandler {
	return &ServicesHandler{Services: services, Events: publisher}
}

func (h *ServicesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{serviceId}", h.get)
	return r
}

func (h *ServicesHandler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.Services.List(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	response.OK(w, services)
}

// get answers null, not 404, when the id matches nothing.
func (h *ServicesHandler) get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Services.Get(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	if svc == nil {
		response.OK(w, nil)
		return
	}
	response.OK(w, svc)
}

func (h *ServicesHandler) create(w http.ResponseWriter, r *http.Request) {
	var svc domain.Service
	if err := decodeBody(r, &svc, false); err != nil {
		response.BadRequest(w, response.MsgBadJSON)
		return
	}
	svc.ID = ""

	res, err := h.Services.Insert(r.Context(), &svc)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	publish(r.Context(), h.Events, events.ServiceCreated, events.ServiceCreatedEvent{
		ServiceID: res.InsertedID,
		Name:      svc.Name,
		Price:     svc.Extra["price"],
		CreatedAt: time.Now().UTC(),
	})
	response.OK(w, res)
}
