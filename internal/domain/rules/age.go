package rules

import (
	"strings"
	"time"
)

// Birthdate layouts accepted from profile records. Older accounts only
// stored a birth month and year.
var dobLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006-01",
	"01/2006",
}

// ParseBirthdate parses a profile dob string. Returns false for empty or
// unrecognized input instead of an error; callers treat that as "age
// unknown" and skip age-derived filters.
func ParseBirthdate(dob string) (time.Time, bool) {
	value := strings.TrimSpace(dob)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dobLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}

// AgeAt computes full years between birthdate and now.
func AgeAt(birthdate, now time.Time) int {
	if birthdate.IsZero() || now.Before(birthdate) {
		return 0
	}

	age := now.Year() - birthdate.Year()
	anniversary := time.Date(now.Year(), birthdate.Month(), birthdate.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// AgeFromDOB combines parsing and age computation. The second return is
// false when the dob string cannot be parsed.
func AgeFromDOB(dob string, now time.Time) (int, bool) {
	birthdate, ok := ParseBirthdate(dob)
	if !ok {
		return 0, false
	}
	return AgeAt(birthdate, now.UTC()), true
}

// ClampAge bounds a derived age filter to the platform's searchable range.
func ClampAge(age, min, max int) int {
	if age < min {
		return min
	}
	if age > max {
		return max
	}
	return age
}
