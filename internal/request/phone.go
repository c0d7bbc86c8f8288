// Package request holds small helpers for cleaning customer input at the
// HTTP boundary.
package request

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats a customer phone number as E.164 when it parses for
// the given default region (e.g. "ID"). Customer contact fields are opaque
// strings, so anything that does not parse is returned trimmed rather than
// rejected.
func NormalizePhone(raw, defaultRegion string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
