// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EvilAekt/Futsal-Booking/internal/api"
	"github.com/EvilAekt/Futsal-Booking/internal/api/bookings"
	"github.com/EvilAekt/Futsal-Booking/internal/api/courts"
	"github.com/EvilAekt/Futsal-Booking/internal/booking"
	"github.com/EvilAekt/Futsal-Booking/internal/config"
	"github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/email"
	"github.com/EvilAekt/Futsal-Booking/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, limiter *ratelimit.Limiter, emailClient *email.SESClient) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	service := booking.NewService(database)

	courts.InitHandlers(database.Queries, service)

	var sender email.EmailSender
	if emailClient != nil {
		sender = emailClient
	}
	bookings.InitHandlers(database.Queries, service, limiter, sender, bookings.Options{
		PhoneRegion: cfg.App.PhoneRegion,
		TrustProxy:  cfg.RateLimit.TrustProxy,
	})

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Court routes
	mux.HandleFunc("GET /api/v1/courts", courts.HandleCourtsList)
	mux.HandleFunc("GET /api/v1/courts/{id}", courts.HandleCourtGet)
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", courts.HandleCourtAvailability)

	// Booking routes
	mux.HandleFunc("POST /api/v1/bookings", bookings.HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("GET /api/v1/bookings/{id}", bookings.HandleBookingGet)
}
