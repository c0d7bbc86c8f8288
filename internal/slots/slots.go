// Package slots holds the pure hour-slot arithmetic behind availability
// queries and booking conflict checks. Everything here is deterministic and
// free of I/O: bookings are reduced to integer hour sets, and both the
// "show free slots" view and the "can I book this" decision are derived from
// the same occupied set so the two can never disagree.
package slots

import "fmt"

// HoursPerDay bounds every hour value handled by this package. A booking
// whose span would cross this boundary is a validation error upstream; hours
// never wrap around midnight.
const HoursPerDay = 24

// Span is an hour-aligned booking interval: Start plus Duration whole hours.
type Span struct {
	Start    int
	Duration int
}

// Hours returns the occupied hours of the span, [Start, Start+Duration).
func (s Span) Hours() []int {
	hours := make([]int, 0, s.Duration)
	for i := 0; i < s.Duration; i++ {
		hours = append(hours, s.Start+i)
	}
	return hours
}

// End returns the first hour after the span.
func (s Span) End() int {
	return s.Start + s.Duration
}

// Within reports whether the whole span lies inside the half-open operating
// window [open, close).
func (s Span) Within(open, close int) bool {
	return s.Start >= open && s.End() <= close
}

// OccupiedHours unions the occupied-hour sets of the given spans.
func OccupiedHours(spans []Span) map[int]struct{} {
	occupied := make(map[int]struct{})
	for _, span := range spans {
		for _, hour := range span.Hours() {
			occupied[hour] = struct{}{}
		}
	}
	return occupied
}

// AvailableHours returns every hour in [open, close) that is not occupied,
// in ascending order.
func AvailableHours(open, close int, occupied map[int]struct{}) []int {
	var available []int
	for hour := open; hour < close; hour++ {
		if _, taken := occupied[hour]; taken {
			continue
		}
		available = append(available, hour)
	}
	return available
}

// Conflicts checks the candidate span against the occupied set and returns
// the first conflicting hour. This is the authoritative accept/reject
// predicate: a multi-hour booking is only free if every hour of its span is
// free, which membership of the start hour in an availability listing alone
// does not guarantee.
func Conflicts(candidate Span, occupied map[int]struct{}) (int, bool) {
	for _, hour := range candidate.Hours() {
		if _, taken := occupied[hour]; taken {
			return hour, true
		}
	}
	return 0, false
}

// FormatHour renders an integer hour as the boundary label "HH:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// FormatHours renders hours as ordered "HH:00" labels.
func FormatHours(hours []int) []string {
	labels := make([]string, 0, len(hours))
	for _, hour := range hours {
		labels = append(labels, FormatHour(hour))
	}
	return labels
}

// FormatWindow renders an operating window as "HH:00-HH:00".
func FormatWindow(open, close int) string {
	return FormatHour(open) + "-" + FormatHour(close)
}
