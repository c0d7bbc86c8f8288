package email

import (
	"fmt"
	"strings"
)

type BookingEmail struct {
	Subject string
	Body    string
}

type BookingDetails struct {
	BookingID    int64
	CustomerName string
	CourtName    string
	Date         string
	TimeRange    string
	Duration     int64
	TotalPrice   string
}

// BuildBookingConfirmation renders the plain-text confirmation sent right
// after a booking is accepted.
func BuildBookingConfirmation(details BookingDetails) BookingEmail {
	courtName := strings.TrimSpace(details.CourtName)
	if courtName == "" {
		courtName = "your court"
	}

	subject := fmt.Sprintf("Booking Confirmed - %s", courtName)

	lines := []string{
		fmt.Sprintf("Hi %s,", strings.TrimSpace(details.CustomerName)),
		"",
		"Your futsal court booking is confirmed.",
		"",
		fmt.Sprintf("Booking number: %d", details.BookingID),
		fmt.Sprintf("Court: %s", courtName),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
		fmt.Sprintf("Duration: %s", formatDuration(details.Duration)),
		fmt.Sprintf("Total price: %s", details.TotalPrice),
		"",
		"Please arrive 15 minutes before your slot starts.",
	}

	return BookingEmail{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

// BuildBookingReminder renders the day-before reminder for an upcoming
// booking.
func BuildBookingReminder(details BookingDetails) BookingEmail {
	courtName := strings.TrimSpace(details.CourtName)
	if courtName == "" {
		courtName = "your court"
	}

	subject := fmt.Sprintf("Upcoming Booking Reminder - %s", courtName)

	lines := []string{
		fmt.Sprintf("Hi %s,", strings.TrimSpace(details.CustomerName)),
		"",
		"Reminder: your futsal court booking is coming up tomorrow.",
		"",
		fmt.Sprintf("Booking number: %d", details.BookingID),
		fmt.Sprintf("Court: %s", courtName),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
	}

	return BookingEmail{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

func formatDuration(hours int64) string {
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
