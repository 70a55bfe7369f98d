package event

import "time"

// ParseDate parses a strict YYYY-MM-DD calendar date. Anything else,
// including syntactically shaped but impossible dates, fails with
// ErrInvalidDateFormat.
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, s)
	// time.Parse accepts unpadded components; the round-trip check keeps
	// directory names canonical.
	if err != nil || date.Format(DateLayout) != s {
		return time.Time{}, ErrInvalidDateFormat
	}
	return date, nil
}
