package bookings

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/EvilAekt/Futsal-Booking/internal/booking"
	appdb "github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/email"
	"github.com/EvilAekt/Futsal-Booking/internal/ratelimit"
	"github.com/EvilAekt/Futsal-Booking/internal/testutil"
)

type recordedEmail struct {
	recipient string
	subject   string
	body      string
}

type fakeSender struct {
	mu        sync.Mutex
	sent      []recordedEmail
	delivered chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{delivered: make(chan struct{}, 8)}
}

func (f *fakeSender) Send(ctx context.Context, recipient, subject, body string) error {
	return f.SendFrom(ctx, recipient, subject, body, "")
}

func (f *fakeSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	f.mu.Lock()
	f.sent = append(f.sent, recordedEmail{recipient: recipient, subject: subject, body: body})
	f.mu.Unlock()
	f.delivered <- struct{}{}
	return nil
}

func (f *fakeSender) waitForSend(t *testing.T) recordedEmail {
	t.Helper()
	select {
	case <-f.delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for confirmation email")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func setupBookingsTest(t *testing.T, rl *ratelimit.Limiter, sender *fakeSender) *appdb.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	resetHandlers := func() {
		queries = nil
		service = nil
		limiter = nil
		emailClient = nil
		options = Options{}
		handlerOnce = sync.Once{}
	}
	resetHandlers()

	var emailSender email.EmailSender
	if sender != nil {
		emailSender = sender
	}
	InitHandlers(database.Queries, booking.NewService(database), rl, emailSender, Options{PhoneRegion: "ID"})

	t.Cleanup(resetHandlers)

	return database
}

func seedCourt(t *testing.T, database *appdb.DB, price int64) appdb.Court {
	t.Helper()

	court, err := database.Queries.CreateCourt(context.Background(), appdb.CreateCourtParams{
		Name:        "Aneka Futsal - Indoor Premium",
		Category:    "indoor",
		HourlyPrice: price,
		Facilities:  "Toilet, Parkir",
		ImageURL:    "https://example.com/court.jpg",
		OpenHour:    8,
		CloseHour:   22,
	})
	if err != nil {
		t.Fatalf("seed court: %v", err)
	}
	return court
}

func createBookingRequest(courtID int64, startHour, duration int) string {
	return fmt.Sprintf(`{
		"court_id": %d,
		"date": "2026-09-01",
		"start_hour": %d,
		"duration": %d,
		"customer_name": "Budi Santoso",
		"customer_phone": "0812-3456-7890",
		"customer_email": "budi@example.com"
	}`, courtID, startHour, duration)
}

func postBooking(t *testing.T, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.10:54321"
	recorder := httptest.NewRecorder()

	HandleBookingCreate(recorder, req)
	return recorder
}

func TestHandleBookingCreate(t *testing.T) {
	sender := newFakeSender()
	database := setupBookingsTest(t, nil, sender)
	court := seedCourt(t, database, 120000)

	recorder := postBooking(t, createBookingRequest(court.ID, 19, 2))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}

	var response BookingResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "confirmed" {
		t.Errorf("status = %q, want confirmed", response.Status)
	}
	if response.TotalPrice != 240000 {
		t.Errorf("total price = %d, want 240000", response.TotalPrice)
	}
	if response.TimeRange != "19:00-21:00" {
		t.Errorf("time range = %q", response.TimeRange)
	}
	if response.CustomerPhone != "+6281234567890" {
		t.Errorf("phone = %q, want normalized E.164", response.CustomerPhone)
	}

	sent := sender.waitForSend(t)
	if sent.recipient != "budi@example.com" {
		t.Errorf("confirmation recipient = %q", sent.recipient)
	}
	if !strings.Contains(sent.body, "Total price: Rp 240.000") {
		t.Errorf("confirmation body missing price:\n%s", sent.body)
	}
}

func TestHandleBookingCreateRejections(t *testing.T) {
	database := setupBookingsTest(t, nil, nil)
	court := seedCourt(t, database, 100000)

	// Occupy 10:00-12:00 first.
	if recorder := postBooking(t, createBookingRequest(court.ID, 10, 2)); recorder.Code != http.StatusCreated {
		t.Fatalf("seed booking status: %d", recorder.Code)
	}

	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantReason string
	}{
		{
			name:       "unknown court",
			payload:    createBookingRequest(999, 10, 1),
			wantStatus: http.StatusNotFound,
			wantReason: "not_found",
		},
		{
			name:       "malformed body",
			payload:    `{"court_id": "one"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "validation_error",
		},
		{
			name:       "zero duration",
			payload:    createBookingRequest(court.ID, 10, 0),
			wantStatus: http.StatusBadRequest,
			wantReason: "validation_error",
		},
		{
			name:       "before opening",
			payload:    createBookingRequest(court.ID, 6, 1),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "out_of_hours",
		},
		{
			name:       "spills past closing",
			payload:    createBookingRequest(court.ID, 21, 2),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "out_of_hours",
		},
		{
			name:       "overlapping slot",
			payload:    createBookingRequest(court.ID, 11, 1),
			wantStatus: http.StatusConflict,
			wantReason: "slot_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postBooking(t, tt.payload)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", recorder.Code, tt.wantStatus, recorder.Body.String())
			}
			var response struct {
				Reason          string `json:"reason"`
				ConflictingHour string `json:"conflicting_hour"`
			}
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if response.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", response.Reason, tt.wantReason)
			}
			if tt.wantReason == "slot_unavailable" && response.ConflictingHour != "11:00" {
				t.Errorf("conflicting hour = %q, want 11:00", response.ConflictingHour)
			}
		})
	}
}

func TestHandleBookingCreateRateLimited(t *testing.T) {
	rl := ratelimit.New(&ratelimit.Config{
		BookingCooldown:     time.Minute,
		BookingMaxPerHour:   10,
		BookingMaxIPPerHour: 30,
	})
	t.Cleanup(rl.Close)

	database := setupBookingsTest(t, rl, nil)
	court := seedCourt(t, database, 100000)

	if recorder := postBooking(t, createBookingRequest(court.ID, 9, 1)); recorder.Code != http.StatusCreated {
		t.Fatalf("first booking status: %d", recorder.Code)
	}

	recorder := postBooking(t, createBookingRequest(court.ID, 10, 1))
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 (body: %s)", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	var response struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Reason != "rate_limited" {
		t.Errorf("reason = %q", response.Reason)
	}

	// The rejected attempt must not have stored anything.
	stored, err := database.Queries.ListBookingsForDate(context.Background(), appdb.ListBookingsForDateParams{
		CourtID:     court.ID,
		BookingDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored bookings = %d, want 1", len(stored))
	}
}

func TestHandleBookingGet(t *testing.T) {
	database := setupBookingsTest(t, nil, nil)
	court := seedCourt(t, database, 100000)

	created := postBooking(t, createBookingRequest(court.ID, 14, 1))
	if created.Code != http.StatusCreated {
		t.Fatalf("create status: %d", created.Code)
	}
	var stored BookingResponse
	if err := json.Unmarshal(created.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode created booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", stored.ID), nil)
	req.SetPathValue("id", fmt.Sprint(stored.ID))
	recorder := httptest.NewRecorder()

	HandleBookingGet(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d", recorder.Code)
	}
	var fetched BookingResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.ID != stored.ID || fetched.StartHour != 14 {
		t.Errorf("unexpected booking: %+v", fetched)
	}
}

func TestHandleBookingGetNotFound(t *testing.T) {
	setupBookingsTest(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/999", nil)
	req.SetPathValue("id", "999")
	recorder := httptest.NewRecorder()

	HandleBookingGet(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status: %d, want 404", recorder.Code)
	}
}

func TestHandleBookingsList(t *testing.T) {
	database := setupBookingsTest(t, nil, nil)
	court := seedCourt(t, database, 100000)

	for _, start := range []int{9, 13} {
		if recorder := postBooking(t, createBookingRequest(court.ID, start, 1)); recorder.Code != http.StatusCreated {
			t.Fatalf("seed booking at %d: status %d", start, recorder.Code)
		}
	}

	req := httptest.NewRequest(
		http.MethodGet,
		fmt.Sprintf("/api/v1/bookings?court_id=%d&date=2026-09-01", court.ID),
		nil,
	)
	recorder := httptest.NewRecorder()

	HandleBookingsList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		Bookings []BookingResponse `json:"bookings"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Bookings) != 2 {
		t.Fatalf("bookings = %d, want 2", len(response.Bookings))
	}
	if response.Bookings[0].StartHour != 9 || response.Bookings[1].StartHour != 13 {
		t.Errorf("bookings out of order: %+v", response.Bookings)
	}
}

func TestHandleBookingsListValidation(t *testing.T) {
	setupBookingsTest(t, nil, nil)

	tests := []string{
		"/api/v1/bookings?date=2026-09-01",
		"/api/v1/bookings?court_id=1",
		"/api/v1/bookings?court_id=1&date=bad",
	}
	for _, url := range tests {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		recorder := httptest.NewRecorder()

		HandleBookingsList(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, recorder.Code)
		}
	}
}
