package flow

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ValidName accepts any trimmed input of at least two characters. People are
// creative with their names; the bar is deliberately low.
func ValidName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= 2
}

// ValidBirthday accepts strictly DD.MM.YYYY with a real calendar date in a
// plausible year range.
func ValidBirthday(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 10 || s[2] != '.' || s[5] != '.' {
		return false
	}
	dt, err := time.Parse("02.01.2006", s)
	if err != nil {
		return false
	}
	// time.Parse normalizes overflow ("30.02" becomes March), so require the
	// round trip to reproduce the input.
	if dt.Format("02.01.2006") != s {
		return false
	}
	year := dt.Year()
	return year >= 1900 && year <= 2100
}

// ValidEmail performs a shallow shape check: one '@', a dot in the domain
// part, and more than three characters overall. Confirmation is the
// visitor's job, not a parser's.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= 3 || !strings.Contains(s, "@") {
		return false
	}
	domain := strings.Split(s, "@")[1]
	return strings.Contains(domain, ".")
}
