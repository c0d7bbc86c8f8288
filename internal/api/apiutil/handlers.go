package apiutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Rejection reason codes surfaced to the boundary. Clients branch on these
// rather than on the human-readable message.
const (
	ReasonNotFound           = "not_found"
	ReasonValidationError    = "validation_error"
	ReasonOutOfHours         = "out_of_hours"
	ReasonSlotUnavailable    = "slot_unavailable"
	ReasonStorageUnavailable = "storage_unavailable"
	ReasonRateLimited        = "rate_limited"
)

// ErrorResponse is the JSON body for every non-2xx API response.
type ErrorResponse struct {
	Error           string `json:"error"`
	Reason          string `json:"reason"`
	ConflictingHour string `json:"conflicting_hour,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes a rejection body with a reason code.
func WriteError(w http.ResponseWriter, status int, reason, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message, Reason: reason})
}

// WriteConflict writes a slot-unavailable rejection carrying the first
// conflicting hour label.
func WriteConflict(w http.ResponseWriter, message, conflictingHour string) {
	_ = WriteJSON(w, http.StatusConflict, ErrorResponse{
		Error:           message,
		Reason:          ReasonSlotUnavailable,
		ConflictingHour: conflictingHour,
	})
}
