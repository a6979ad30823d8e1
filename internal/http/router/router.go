package router

import (
	"net/http"

	"github.com/diagnosis/carshop-bookings/internal/http/handlers"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/diagnosis/carshop-bookings/pkg/auth"
	"github.com/diagnosis/carshop-bookings/pkg/events"
	mw "github.com/diagnosis/carshop-bookings/pkg/middleware"
	"github.com/go-chi/chi/v5"
)

type Options struct {
	Store  repo.Store
	Issuer *auth.Issuer
	Events events.Publisher
	// Idempotency is optional; nil disables Idempotency-Key replay.
	Idempotency    mw.IdempotencyStore
	AllowedOrigins []string
	Production     bool
}

func New(opts Options) http.Handler {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}

	authH := handlers.NewAuthHandler(opts.Issuer, opts.Production)
	servicesH := handlers.NewServicesHandler(opts.Store.Services(), opts.Events)
	bookingsH := handlers.NewBookingsHandler(opts.Store.Bookings(), opts.Issuer, opts.Events)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("carshop-bookings"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.CORS(opts.AllowedOrigins))

	r.Get("/", handlers.Root)

	r.Post("/jwt", authH.Login)
	r.Post("/logout", authH.Logout)

	// Session routes stay outside the idempotency group: a replayed body
	// would carry no cookie.
	r.Group(func(r chi.Router) {
		if opts.Idempotency != nil {
			r.Use(mw.Idempotency(opts.Idempotency))
		}
		r.Mount("/services", servicesH.Routes())
		r.Mount("/bookings", bookingsH.Routes())
	})

	return r
}
