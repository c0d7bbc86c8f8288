// internal/booking/service.go
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	appdb "github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/slots"
)

const dateLayout = "2006-01-02"

// StatusConfirmed is the only status this service produces. The remaining
// values are reserved terminal states for future transitions.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Service arbitrates booking requests against a court's operating hours and
// its existing reservations. The pre-check runs in process; the per-hour
// unique index re-checks at commit time, so the non-overlap invariant holds
// even when requests race across processes.
type Service struct {
	database *appdb.DB
}

func NewService(database *appdb.DB) *Service {
	return &Service{database: database}
}

// Request carries one booking attempt. Customer fields are opaque beyond
// being non-empty.
type Request struct {
	CourtID       int64
	Date          string
	StartHour     int
	Duration      int
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
}

func (r Request) span() slots.Span {
	return slots.Span{Start: r.StartHour, Duration: r.Duration}
}

func (r Request) validate() error {
	if r.CourtID <= 0 {
		return ValidationError{Field: "court_id", Reason: "must be a positive integer"}
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	if r.StartHour < 0 || r.StartHour >= slots.HoursPerDay {
		return ValidationError{Field: "start_hour", Reason: "must be between 0 and 23"}
	}
	if r.Duration < 1 {
		return ValidationError{Field: "duration", Reason: "must be at least 1 hour"}
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return ValidationError{Field: "customer_name", Reason: "is required"}
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		return ValidationError{Field: "customer_phone", Reason: "is required"}
	}
	if strings.TrimSpace(r.CustomerEmail) == "" {
		return ValidationError{Field: "customer_email", Reason: "is required"}
	}
	return nil
}

// RequestBooking validates the request, checks the full candidate span
// against the court's window and existing occupancy, prices it, and persists
// the booking atomically. On success the stored booking is returned with its
// generated id and timestamp; every rejection path leaves storage untouched.
func (s *Service) RequestBooking(ctx context.Context, req Request) (appdb.Booking, error) {
	if err := req.validate(); err != nil {
		return appdb.Booking{}, err
	}

	court, err := s.database.Queries.GetCourt(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Booking{}, ErrCourtNotFound
		}
		return appdb.Booking{}, fmt.Errorf("load court: %w", err)
	}

	span := req.span()
	if !span.Within(int(court.OpenHour), int(court.CloseHour)) {
		return appdb.Booking{}, OutOfHoursError{
			OpenHour:  int(court.OpenHour),
			CloseHour: int(court.CloseHour),
		}
	}

	// Advisory pre-check against current occupancy. A concurrent writer may
	// still claim the slot between this read and our commit; the unique
	// index settles that case below.
	existing, err := s.database.Queries.ListActiveBookingsForDate(ctx, appdb.ListBookingsForDateParams{
		CourtID:     req.CourtID,
		BookingDate: req.Date,
	})
	if err != nil {
		return appdb.Booking{}, fmt.Errorf("load bookings: %w", err)
	}
	if hour, conflict := slots.Conflicts(span, slots.OccupiedHours(bookingSpans(existing))); conflict {
		return appdb.Booking{}, SlotUnavailableError{Hour: hour}
	}

	totalPrice := court.HourlyPrice * int64(req.Duration)

	var created appdb.Booking
	err = s.database.RunInTx(ctx, func(txdb *appdb.DB) error {
		created, err = txdb.Queries.CreateBooking(ctx, appdb.CreateBookingParams{
			CourtID:       req.CourtID,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			CustomerEmail: strings.TrimSpace(req.CustomerEmail),
			BookingDate:   req.Date,
			StartHour:     int64(req.StartHour),
			Duration:      int64(req.Duration),
			TotalPrice:    totalPrice,
			Status:        StatusConfirmed,
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		// Claim hours in ascending order so a constraint failure names the
		// first conflicting hour of the span.
		for _, hour := range span.Hours() {
			err := txdb.Queries.AddBookingHour(ctx, appdb.AddBookingHourParams{
				BookingID:   created.ID,
				CourtID:     req.CourtID,
				BookingDate: req.Date,
				Hour:        int64(hour),
			})
			if err != nil {
				if appdb.IsUniqueConstraint(err) {
					return SlotUnavailableError{Hour: hour}
				}
				return fmt.Errorf("claim hour %d: %w", hour, err)
			}
		}
		return nil
	})
	if err != nil {
		var unavailable SlotUnavailableError
		if errors.As(err, &unavailable) {
			log.Ctx(ctx).Info().
				Int64("court_id", req.CourtID).
				Str("date", req.Date).
				Int("hour", unavailable.Hour).
				Msg("Booking lost slot race at commit")
			return appdb.Booking{}, unavailable
		}
		return appdb.Booking{}, err
	}

	return created, nil
}

// Availability returns the court's free hour slots for a date as ordered
// "HH:00" labels. Unknown courts yield ErrCourtNotFound; bad dates yield a
// ValidationError.
func (s *Service) Availability(ctx context.Context, courtID int64, date string) ([]string, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}

	court, err := s.database.Queries.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("load court: %w", err)
	}

	existing, err := s.database.Queries.ListActiveBookingsForDate(ctx, appdb.ListBookingsForDateParams{
		CourtID:     courtID,
		BookingDate: date,
	})
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	occupied := slots.OccupiedHours(bookingSpans(existing))
	available := slots.AvailableHours(int(court.OpenHour), int(court.CloseHour), occupied)
	return slots.FormatHours(available), nil
}

func bookingSpans(bookings []appdb.Booking) []slots.Span {
	spans := make([]slots.Span, 0, len(bookings))
	for _, b := range bookings {
		spans = append(spans, slots.Span{Start: int(b.StartHour), Duration: int(b.Duration)})
	}
	return spans
}
