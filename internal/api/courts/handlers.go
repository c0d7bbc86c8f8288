// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EvilAekt/Futsal-Booking/internal/api/apiutil"
	"github.com/EvilAekt/Futsal-Booking/internal/booking"
	appdb "github.com/EvilAekt/Futsal-Booking/internal/db"
	"github.com/EvilAekt/Futsal-Booking/internal/slots"
)

var (
	queries     *appdb.Queries
	service     *booking.Service
	handlerOnce sync.Once
)

const courtsQueryTimeout = 5 * time.Second

// Pagination bounds for the court list.
const (
	defaultPageLimit = 100
	maxPageLimit     = 100
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *appdb.Queries, svc *booking.Service) {
	if q == nil || svc == nil {
		return
	}
	handlerOnce.Do(func() {
		queries = q
		service = svc
	})
}

// CourtResponse is the JSON shape for a single court.
type CourtResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	HourlyPrice    int64    `json:"hourly_price"`
	PriceDisplay   string   `json:"price_display"`
	Facilities     []string `json:"facilities"`
	ImageURL       string   `json:"image_url"`
	OpenHour       int      `json:"open_hour"`
	CloseHour      int      `json:"close_hour"`
	OperatingHours string   `json:"operating_hours"`
}

type courtListResponse struct {
	Courts []CourtResponse `json:"courts"`
	Total  int64           `json:"total"`
	Offset int64           `json:"offset"`
	Limit  int64           `json:"limit"`
}

type availabilityResponse struct {
	CourtID        int64    `json:"court_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

func courtResponse(court appdb.Court) CourtResponse {
	return CourtResponse{
		ID:             court.ID,
		Name:           court.Name,
		Category:       court.Category,
		HourlyPrice:    court.HourlyPrice,
		PriceDisplay:   apiutil.FormatPriceRupiah(court.HourlyPrice),
		Facilities:     apiutil.SplitFacilities(court.Facilities),
		ImageURL:       court.ImageURL,
		OpenHour:       int(court.OpenHour),
		CloseHour:      int(court.CloseHour),
		OperatingHours: slots.FormatWindow(int(court.OpenHour), int(court.CloseHour)),
	}
}

// GET /api/v1/courts
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	offset := int64(0)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := apiutil.ParseNonNegativeInt64Field(raw, "offset")
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
			return
		}
		offset = parsed
	}

	limit := int64(defaultPageLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := apiutil.ParsePositiveInt64Field(raw, "limit")
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
			return
		}
		limit = parsed
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	total, err := queries.CountCourts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to count courts")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to load courts")
		return
	}

	courtRows, err := queries.ListCourts(ctx, appdb.ListCourtsParams{Offset: offset, Limit: limit})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load courts")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to load courts")
		return
	}

	response := courtListResponse{
		Courts: make([]CourtResponse, 0, len(courtRows)),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
	for _, court := range courtRows {
		response.Courts = append(response.Courts, courtResponse(court))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write courts response")
	}
}

// GET /api/v1/courts/{id}
func HandleCourtGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := queries.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, apiutil.ReasonNotFound, "court not found")
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load court")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to load court")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, courtResponse(court)); err != nil {
		logger.Error().Err(err).Msg("Failed to write court response")
	}
}

// GET /api/v1/courts/{id}/availability?date=YYYY-MM-DD
func HandleCourtAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if service == nil {
		logger.Error().Msg("Booking service not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Internal Server Error")
		return
	}

	courtID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, err.Error())
		return
	}

	date := r.URL.Query().Get("date")

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	available, err := service.Availability(ctx, courtID, date)
	if err != nil {
		var validation booking.ValidationError
		switch {
		case errors.Is(err, booking.ErrCourtNotFound):
			apiutil.WriteError(w, http.StatusNotFound, apiutil.ReasonNotFound, "court not found")
		case errors.As(err, &validation):
			apiutil.WriteError(w, http.StatusBadRequest, apiutil.ReasonValidationError, validation.Error())
		default:
			logger.Error().Err(err).Int64("court_id", courtID).Str("date", date).Msg("Failed to compute availability")
			apiutil.WriteError(w, http.StatusInternalServerError, apiutil.ReasonStorageUnavailable, "Failed to compute availability")
		}
		return
	}

	response := availabilityResponse{
		CourtID:        courtID,
		Date:           date,
		AvailableSlots: available,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability response")
	}
}
