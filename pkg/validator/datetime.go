package validator

import (
	"strings"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	ErrMsgDate  = "Formato de fecha inválido. Use YYYY-MM-DD"
	ErrMsgClock = "Formato de hora inválido. Use HH:MM"
)

// timestampLayouts are tried after the strict date layout fails.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses a suggested date. A blank string means no date. The strict
// calendar form is tried first, then full timestamps; the result is truncated
// to the calendar day.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return &t, nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}

	return nil, apperror.Validation(ErrMsgDate)
}

// ParseClock parses a suggested time of day strictly as HH:MM and returns it
// normalized. A blank string means no time.
func ParseClock(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return nil, apperror.Validation(ErrMsgClock)
	}

	out := t.Format(ClockLayout)
	return &out, nil
}
