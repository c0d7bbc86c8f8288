// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside transactions.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Court struct {
	ID          int64
	Name        string
	Category    string
	HourlyPrice int64
	Facilities  string
	ImageURL    string
	OpenHour    int64
	CloseHour   int64
}

type Booking struct {
	ID            int64
	CourtID       int64
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	BookingDate   string
	StartHour     int64
	Duration      int64
	TotalPrice    int64
	Status        string
	CreatedAt     time.Time
}

const courtColumns = `id, name, category, hourly_price, facilities, image_url, open_hour, close_hour`

func scanCourt(row interface{ Scan(...any) error }) (Court, error) {
	var c Court
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Category,
		&c.HourlyPrice,
		&c.Facilities,
		&c.ImageURL,
		&c.OpenHour,
		&c.CloseHour,
	)
	return c, err
}

func (q *Queries) GetCourt(ctx context.Context, id int64) (Court, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+courtColumns+` FROM courts WHERE id = ?`, id)
	return scanCourt(row)
}

type ListCourtsParams struct {
	Offset int64
	Limit  int64
}

func (q *Queries) ListCourts(ctx context.Context, arg ListCourtsParams) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+courtColumns+` FROM courts ORDER BY id LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}

func (q *Queries) CountCourts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courts`).Scan(&count)
	return count, err
}

type CreateCourtParams struct {
	Name        string
	Category    string
	HourlyPrice int64
	Facilities  string
	ImageURL    string
	OpenHour    int64
	CloseHour   int64
}

func (q *Queries) CreateCourt(ctx context.Context, arg CreateCourtParams) (Court, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO courts (name, category, hourly_price, facilities, image_url, open_hour, close_hour)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Category, arg.HourlyPrice, arg.Facilities, arg.ImageURL, arg.OpenHour, arg.CloseHour)
	if err != nil {
		return Court{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Court{}, err
	}
	return q.GetCourt(ctx, id)
}

const bookingColumns = `id, court_id, customer_name, customer_phone, customer_email,
	booking_date, start_hour, duration, total_price, status, created_at`

func scanBooking(row interface{ Scan(...any) error }) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.CourtID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.BookingDate,
		&b.StartHour,
		&b.Duration,
		&b.TotalPrice,
		&b.Status,
		&b.CreatedAt,
	)
	return b, err
}

func (q *Queries) GetBooking(ctx context.Context, id int64) (Booking, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

type ListBookingsForDateParams struct {
	CourtID     int64
	BookingDate string
}

// ListBookingsForDate returns every booking for a court and date regardless
// of status.
func (q *Queries) ListBookingsForDate(ctx context.Context, arg ListBookingsForDateParams) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE court_id = ? AND booking_date = ?
		 ORDER BY start_hour`,
		arg.CourtID, arg.BookingDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListActiveBookingsForDate returns the bookings that count toward occupancy:
// everything except cancelled ones.
func (q *Queries) ListActiveBookingsForDate(ctx context.Context, arg ListBookingsForDateParams) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE court_id = ? AND booking_date = ? AND status != 'cancelled'
		 ORDER BY start_hour`,
		arg.CourtID, arg.BookingDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

type CreateBookingParams struct {
	CourtID       int64
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	BookingDate   string
	StartHour     int64
	Duration      int64
	TotalPrice    int64
	Status        string
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO bookings (court_id, customer_name, customer_phone, customer_email,
		   booking_date, start_hour, duration, total_price, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.CourtID, arg.CustomerName, arg.CustomerPhone, arg.CustomerEmail,
		arg.BookingDate, arg.StartHour, arg.Duration, arg.TotalPrice, arg.Status)
	if err != nil {
		return Booking{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Booking{}, err
	}
	return q.GetBooking(ctx, id)
}

type AddBookingHourParams struct {
	BookingID   int64
	CourtID     int64
	BookingDate string
	Hour        int64
}

// AddBookingHour claims one occupied hour for a booking. The unique index on
// (court_id, booking_date, hour) makes this insert fail when another booking
// already holds the slot; callers translate that into a conflict rejection.
func (q *Queries) AddBookingHour(ctx context.Context, arg AddBookingHourParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO booking_hours (booking_id, court_id, booking_date, hour)
		 VALUES (?, ?, ?, ?)`,
		arg.BookingID, arg.CourtID, arg.BookingDate, arg.Hour)
	return err
}

type ListOccupiedHoursParams struct {
	CourtID     int64
	BookingDate string
}

func (q *Queries) ListOccupiedHours(ctx context.Context, arg ListOccupiedHoursParams) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT hour FROM booking_hours
		 WHERE court_id = ? AND booking_date = ?
		 ORDER BY hour`,
		arg.CourtID, arg.BookingDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []int64
	for rows.Next() {
		var hour int64
		if err := rows.Scan(&hour); err != nil {
			return nil, err
		}
		hours = append(hours, hour)
	}
	return hours, rows.Err()
}

type BookingWithCourt struct {
	Booking
	CourtName string
}

// ListBookingsOnDate returns all non-cancelled bookings across courts for a
// date, with the court name attached. Used by the reminder job.
func (q *Queries) ListBookingsOnDate(ctx context.Context, bookingDate string) ([]BookingWithCourt, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT b.id, b.court_id, b.customer_name, b.customer_phone, b.customer_email,
		        b.booking_date, b.start_hour, b.duration, b.total_price, b.status, b.created_at,
		        c.name
		 FROM bookings b
		 JOIN courts c ON c.id = b.court_id
		 WHERE b.booking_date = ? AND b.status != 'cancelled'
		 ORDER BY b.court_id, b.start_hour`,
		bookingDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []BookingWithCourt
	for rows.Next() {
		var b BookingWithCourt
		if err := rows.Scan(
			&b.ID,
			&b.CourtID,
			&b.CustomerName,
			&b.CustomerPhone,
			&b.CustomerEmail,
			&b.BookingDate,
			&b.StartHour,
			&b.Duration,
			&b.TotalPrice,
			&b.Status,
			&b.CreatedAt,
			&b.CourtName,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
