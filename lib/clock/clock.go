package clock

import (
	"fmt"
	"time"
)

// ShowLayout is the storage format for show date/time values ("2026-02-15 19:00").
const ShowLayout = "2006-01-02 15:04"

func Now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// ValidShow reports whether a string is a well-formed show date/time.
func ValidShow(s string) bool {
	_, err := time.Parse(ShowLayout, s)
	return err == nil
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatShow renders a stored show date/time in a human-readable Russian
// form: "2026-02-15 19:00" -> "15 февраля 2026 19:00". Date-only values are
// rendered without the time part. Unparseable input is returned as is.
func FormatShow(s string) string {
	if s == "" {
		return ""
	}
	if dt, err := time.Parse(ShowLayout, s); err == nil {
		return fmt.Sprintf("%d %s %d %s", dt.Day(), ruMonths[dt.Month()-1], dt.Year(), dt.Format("15:04"))
	}
	if dt, err := time.Parse("2006-01-02", s); err == nil {
		return fmt.Sprintf("%d %s %d", dt.Day(), ruMonths[dt.Month()-1], dt.Year())
	}
	return s
}
