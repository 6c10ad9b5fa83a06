package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the availability and booking endpoints. Session and
// role checks run in the portal gateway before requests reach this
// service, so there is no auth middleware here.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/managers/{managerID}", func(r chi.Router) {
			r.Get("/availability", h.GetAvailability)
			r.Put("/availability", h.SaveAvailability)
			r.Post("/availability/transform", h.TransformAvailability)

			r.Get("/exceptions", h.ListExceptions)
			r.Post("/exceptions", h.AddException)
			r.Delete("/exceptions/{date}", h.RemoveException)

			r.Get("/free-windows", h.FreeWindows)
			r.Get("/bookings", h.ListBookings)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Post("/{bookingID}/cancel", h.CancelBooking)
		})
	})

	return r
}
