package rips

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}( \d{2}:\d{2})?$`)
)

// DateError reports a date that is neither ISO nor DD/MM/YYYY.
type DateError struct {
	Input string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected DD/MM/YYYY or YYYY-MM-DD", e.Input)
}

// ToISODate converts "DD/MM/YYYY" to "YYYY-MM-DD". ISO input is returned
// unchanged, so the conversion is idempotent.
func ToISODate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if isoDateRe.MatchString(s) {
		return s, nil
	}
	datePart, _, _ := strings.Cut(s, " ")
	return rearrange(s, datePart)
}

// ToISODateTime converts "DD/MM/YYYY[ HH:mm]" to "YYYY-MM-DD HH:mm",
// defaulting the time to 00:00. ISO input is returned unchanged.
func ToISODateTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if isoDateTimeRe.MatchString(s) {
		return s, nil
	}
	datePart, timePart, _ := strings.Cut(s, " ")
	date, err := rearrange(s, datePart)
	if err != nil {
		return "", err
	}
	timePart = strings.TrimSpace(timePart)
	if timePart == "" {
		timePart = "00:00"
	}
	return date + " " + timePart, nil
}

func rearrange(input, datePart string) (string, error) {
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return "", &DateError{Input: input}
	}
	for _, p := range parts {
		if p == "" {
			return "", &DateError{Input: input}
		}
	}
	day, month, year := pad2(parts[0]), pad2(parts[1]), parts[2]
	return year + "-" + month + "-" + day, nil
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
