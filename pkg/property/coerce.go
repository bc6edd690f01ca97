package property

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
)

// The feed stores every value as free-form text. These functions are the
// only place that text becomes typed data, and none of them fail: a value
// that does not parse becomes the type's default.

// Yes reports whether a flag column holds the literal "Yes".
func Yes(s string) bool {
	return strings.TrimSpace(s) == mls.YesValue
}

// plainNumber accepts the same values as the SQL numeric guard, so a row
// filtered on a price in SQL reports that same price here.
var plainNumber = regexp.MustCompile(`^-?\$?[0-9][0-9,]*(\.[0-9]+)?$`)

var numericCleaner = strings.NewReplacer(",", "", "$", "")

// Float parses a numeric column, tolerating thousands separators and a
// currency sign. Anything else, exponents and hex included, yields 0.
func Float(s string) float64 {
	s = strings.TrimSpace(s)
	if !plainNumber.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(numericCleaner.Replace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Int parses an integer column. Fractional values are truncated.
func Int(s string) int {
	return int(math.Trunc(Float(s)))
}

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"01/02/2006",
	"1/2/2006",
}

// Time parses a date or timestamp column, or returns nil.
func Time(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Date parses a column and keeps only its calendar date, at UTC midnight.
func Date(s string) *time.Time {
	t := Time(s)
	if t == nil {
		return nil
	}
	d := civil(*t)
	return &d
}

// Text returns the trimmed value, or nil when empty.
func Text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
