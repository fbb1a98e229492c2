// Package core implements the group's financial derivation engine: calendar
// resolution, the round ledger, aggregate projection and the snapshot
// mutators. Everything here is pure; persistence and sync live elsewhere.
package core

import (
	"time"
)

// DateLayout is the wire format for all dates in the snapshot.
const DateLayout = "2006-01-02"

// settlementDay is the default day-of-month a payment is considered settled
// when no explicit date is supplied.
const settlementDay = 10

// ParseDate parses a wire-format date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// addMonths adds offset calendar months to start, normalized to the first of
// the month first. Without the normalization a start date on the 31st would
// overflow into the month after next (Jan 31 + 1 month = Mar 3).
func addMonths(start time.Time, offset int) time.Time {
	return time.Date(start.Year(), start.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel returns the human label for the round, e.g. "Jan-2024".
func MonthLabel(start time.Time, offset int) string {
	return addMonths(start, offset).Format("Jan-2006")
}

// SettlementDate returns the canonical settlement date for the round: the
// 10th of the round's month.
func SettlementDate(start time.Time, offset int) time.Time {
	d := addMonths(start, offset)
	return time.Date(d.Year(), d.Month(), settlementDay, 0, 0, 0, 0, time.UTC)
}

// CurrentRound returns the zero-based round index for "now": the whole
// calendar-month difference from the start date, ignoring day-of-month.
// Dates before the start clamp to round 0. The index grows past the
// configured duration; callers clamp against DurationMonths where needed.
func CurrentRound(start time.Time, now time.Time) int {
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if months < 0 {
		return 0
	}
	return months
}

// startDate parses the configured start date, falling back to "now" when the
// stored value is malformed so derivation keeps working on bad data.
func (s Snapshot) startDate(now time.Time) time.Time {
	start, err := ParseDate(s.Config.StartDate)
	if err != nil {
		return now
	}
	return start
}

// CurrentRoundAt returns the group's current round index for the given time.
func (s Snapshot) CurrentRoundAt(now time.Time) int {
	return CurrentRound(s.startDate(now), now)
}
