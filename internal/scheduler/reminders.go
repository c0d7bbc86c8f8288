package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/EvilAekt/Futsal-Booking/internal/api/apiutil"
	"github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/email"
	"github.com/EvilAekt/Futsal-Booking/internal/slots"
)

const reminderDateLayout = "2006-01-02"

// RegisterReminderJobs schedules the daily booking reminder run. Every
// evening the job emails customers who have a booking the next day.
func RegisterReminderJobs(database *db.DB, emailClient email.EmailSender) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}

	jobName := "booking_reminders"
	cronExpr := "0 18 * * *"
	jobLogger := log.With().
		Str("component", "booking_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if emailClient == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email client not configured")
			return
		}

		tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(reminderDateLayout)
		bookings, err := database.Queries.ListBookingsOnDate(ctx, tomorrow)
		if err != nil {
			jobLogger.Error().Err(err).Str("date", tomorrow).Msg("Failed to load bookings for reminder job")
			return
		}
		if len(bookings) == 0 {
			jobLogger.Debug().Str("date", tomorrow).Msg("No bookings to remind")
			return
		}

		for _, booking := range bookings {
			message := email.BuildBookingReminder(email.BookingDetails{
				BookingID:    booking.ID,
				CustomerName: booking.CustomerName,
				CourtName:    booking.CourtName,
				Date:         booking.BookingDate,
				TimeRange:    slots.FormatWindow(int(booking.StartHour), int(booking.StartHour+booking.Duration)),
				Duration:     booking.Duration,
				TotalPrice:   apiutil.FormatPriceRupiah(booking.TotalPrice),
			})
			email.SendReminderEmail(ctx, emailClient, booking.CustomerEmail, message, "", &jobLogger)
		}
		jobLogger.Info().Int("count", len(bookings)).Str("date", tomorrow).Msg("Booking reminders dispatched")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking reminder job: %w", err)
	}

	jobLogger.Info().Msg("Booking reminder job registered")
	return nil
}
