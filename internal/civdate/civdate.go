// Package civdate normalizes instants and tier boundaries to civil
// calendar dates in the US Eastern reference zone. Every tier boundary
// in the system is interpreted in this single zone so that attribution
// is deterministic regardless of where a request is served.
package civdate

import "time"

// Layout is the canonical civil date form, zero-padded so that
// lexicographic comparison matches chronological order.
const Layout = "2006-01-02"

const stampLayout = "2006-01-02 15:04:05 MST"

// Eastern is the fixed reference zone for tier attribution.
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// No tzdata on the host; EST keeps dates deterministic even if
		// DST transitions shift a boundary hour.
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Civil returns t as a YYYY-MM-DD string in the reference zone, or ""
// for the zero time. Callers treat "" as "no usable instant".
func Civil(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Eastern).Format(Layout)
}

// Boundary normalizes a configured tier boundary to its date part.
// Boundaries are stored as civil dates already, so they are truncated
// to their first 10 characters, never zone-converted; converting them
// would shift a configured calendar day across midnight. Returns ""
// when the value is too short to hold a date.
func Boundary(s string) string {
	if len(s) < len(Layout) {
		return ""
	}
	return s[:len(Layout)]
}

// Stamp renders t in the reference zone for report and export
// metadata. The zero time renders as "".
func Stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Eastern).Format(stampLayout)
}
