package summary

import "time"

// DayStart returns the start of the day containing t in the user's timezone,
// converted to UTC.
func DayStart(t time.Time, tz *time.Location) time.Time {
	local := t.In(tz)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
	return start.UTC()
}

// NextDayStart returns the start of the following day in the user's timezone,
// converted to UTC. The day range is half-open: [DayStart, NextDayStart).
func NextDayStart(t time.Time, tz *time.Location) time.Time {
	start := DayStart(t, tz)
	// AddDate handles DST correctly, Add(24h) does not
	next := start.In(tz).AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, tz).UTC()
}

// ParseDay parses a YYYY-MM-DD string as a date in the given timezone.
func ParseDay(day string, tz *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, tz)
}
