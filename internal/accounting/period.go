package accounting

import "time"

// IsActive reports whether the calendar day of now, in now's location, falls
// within the inclusive range [start, end]. Start and end are calendar dates
// and are read in UTC, which is how they are stored.
func IsActive(start, end, now time.Time) bool {
	today := civil(now)
	return !today.Before(dateOf(start)) && !today.After(dateOf(end))
}

// civil maps t to midnight UTC of its calendar day in t's own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	return civil(t.UTC())
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDate drops the time of day from t, keeping its calendar day in t's location.
func TruncateDate(t time.Time) time.Time {
	return civil(t)
}
