// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/EvilAekt/Futsal-Booking/internal/api/apiutil"
	"github.com/EvilAekt/Futsal-Booking/internal/booking"
	appdb "github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/email"
	"github.com/EvilAekt/Futsal-Booking/internal/ratelimit"
	"github.com/EvilAekt/Futsal-Booking/internal/request"
	"github.com/EvilAekt/Futsal-Booking/internal/slots"
)

// Options carries the request-shaping knobs the handlers need beyond their
// collaborators.
type Options struct {
	PhoneRegion string
	TrustProxy  bool
}

var (
	queries     *appdb.Queries
	service     *booking.Service
	limiter     *ratelimit.Limiter
	emailClient email.EmailSender
	options     Options
	handlerOnce sync.Once
)

const bookingsQueryTimeout = 10 * time.Second

// InitHandlers must be called during server startup before handling
// requests. The limiter and email client are optional.
func InitHandlers(q *appdb.Queries, svc *booking.Service, rl *ratelimit.Limiter, sender email.EmailSender, opts Options) {
	if q == nil || svc == nil {
		return
	}
	handlerOnce.Do(func() {
		queries = q
		service = svc
		limiter = rl
		emailClient = sender
		options = opts
	})
}

type bookingCreateRequest struct {
	CourtID       int64  `json:"court_id"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	Duration      int    `json:"duration"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
}

// BookingResponse is the JSON shape for a stored booking.
type BookingResponse struct {
	ID            int64  `json:"id"`
	CourtID       int64  `json:"court_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	Duration      int    `json:"duration"`
	TimeRange     string `json:"time_range"`
	TotalPrice    int64  `json:"total_price"`
	PriceDisplay  string `json:"price_display"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type bookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

func bookingResponse(b appdb.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		CourtID:       b.CourtID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: b.CustomerEmail,
		Date:          b.BookingDate,
		StartHour:     int(b.StartHour),
		Duration:      int(b.Duration),
		TimeRange:     slots.FormatWindow(int(b.StartHour), int(b.StartHour+b.Duration)),
		TotalPrice:    b.TotalPrice,
		PriceDisplay:  apiutil.FormatPriceRupiah(b.TotalPrice),
		Status:        b.Status,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Booking service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	var body bookingCreateRequest
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, "invalid request body")
		return
	}

	clientIP := ratelimit.GetClientIP(r, options.TrustProxy)
	if limiter != nil {
		result := limiter.CheckBookingCreate(body.CustomerEmail, clientIP)
		if !result.Allowed {
			ratelimit.LogRateLimitExceeded(body.CustomerEmail, clientIP, result.Reason)
			w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
			apiutil.WriteError(w, http.StatusTooManyRequests, apiutil.ReasonRateLimited, "too many booking attempts, try again later")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	created, err := service.RequestBooking(ctx, booking.Request{
		CourtID:       body.CourtID,
		Date:          body.Date,
		StartHour:     body.StartHour,
		Duration:      body.Duration,
		CustomerName:  body.CustomerName,
		CustomerPhone: request.NormalizePhone(body.CustomerPhone, options.PhoneRegion),
		CustomerEmail: body.CustomerEmail,
	})
	if err != nil {
		writeBookingError(w, r, err)
		return
	}

	if limiter != nil {
		limiter.RecordBookingCreate(created.CustomerEmail, clientIP)
	}

	sendConfirmation(ctx, created, logger)

	logger.Info().
		Int64("booking_id", created.ID).
		Int64("court_id", created.CourtID).
		Str("date", created.BookingDate).
		Int64("start_hour", created.StartHour).
		Int64("duration", created.Duration).
		Msg("Booking confirmed")

	if err := apiutil.WriteJSON(w, http.StatusCreated, bookingResponse(created)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings/{id}
func HandleBookingGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	bookingID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	stored, err := queries.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, apiutil.ReasonNotFound, "booking not found")
			return
		}
		logger.Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to load booking")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to load booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, bookingResponse(stored)); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings?court_id=&date=
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	courtID, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("court_id"), "court_id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
		return
	}
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, "date must be a valid YYYY-MM-DD date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	stored, err := queries.ListBookingsForDate(ctx, appdb.ListBookingsForDateParams{
		CourtID:     courtID,
		BookingDate: date,
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Str("date", date).Msg("Failed to load bookings")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to load bookings")
		return
	}

	response := bookingListResponse{Bookings: make([]BookingResponse, 0, len(stored))}
	for _, b := range stored {
		response.Bookings = append(response.Bookings, bookingResponse(b))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write bookings response")
	}
}

// writeBookingError translates service rejections into the boundary's
// status codes and reason codes.
func writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation  booking.ValidationError
		outOfHours  booking.OutOfHoursError
		unavailable booking.SlotUnavailableError
	)

	switch {
	case errors.Is(err, booking.ErrCourtNotFound):
		apiutil.WriteError(w, http.StatusNotFound, apiutil.ReasonNotFound, "court not found")
	case errors.As(err, &validation):
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, validation.Error())
	case errors.As(err, &outOfHours):
		apiutil.WriteError(w, http.StatusUnprocessableEntity, apiutil.ReasonOutOfHours, outOfHours.Error())
	case errors.As(err, &unavailable):
		apiutil.WriteConflict(w, unavailable.Error(), slots.FormatHour(unavailable.Hour))
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Booking request failed")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to store booking")
	}
}

// sendConfirmation emails the customer after the booking committed. Send
// failures never affect the response.
func sendConfirmation(ctx context.Context, created appdb.Booking, logger *zerolog.Logger) {
	if emailClient == nil || queries == nil {
		return
	}

	courtName := ""
	if court, err := queries.GetCourt(ctx, created.CourtID); err == nil {
		courtName = court.Name
	} else {
		logger.Error().Err(err).Int64("court_id", created.CourtID).Msg("Failed to load court for confirmation email")
	}

	message := email.BuildBookingConfirmation(email.BookingDetails{
		BookingID:    created.ID,
		CustomerName: created.CustomerName,
		CourtName:    courtName,
		Date:         created.BookingDate,
		TimeRange:    slots.FormatWindow(int(created.StartHour), int(created.StartHour+created.Duration)),
		Duration:     created.Duration,
		TotalPrice:   apiutil.FormatPriceRupiah(created.TotalPrice),
	})
	email.SendConfirmationEmail(ctx, emailClient, created.CustomerEmail, message, logger)
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
