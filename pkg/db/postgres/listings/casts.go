package listings

import (
	"fmt"
	"strings"
)

// Every numeric and date column in the feed is text that may be NULL, empty
// or garbage. A bare ::numeric or ::date on a bad value aborts the whole
// statement, so all casts go through these guards and yield NULL instead.
// Date casts never hand text to ::date: the parts are range-checked and the
// date is built with MAKE_DATE, so "2025-02-30" becomes NULL rather than an
// error.

const (
	numericPattern = `^\s*-?\$?[0-9][0-9,]*(\.[0-9]+)?\s*$`

	// usDatePrefix is rewritten to yyyy-m-d so one pattern covers both forms.
	usDatePrefix = `^([0-9]{1,2})/([0-9]{1,2})/([0-9]{4})`
	datePattern  = `^[0-9]{4}-[0-9]{1,2}-[0-9]{1,2}` +
		`([ T]([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9](\.[0-9]{1,6})?)?(Z|[+-][0-9]{2}(:?[0-9]{2})?)?)?$`

	yearPart  = `^([0-9]{4})`
	monthPart = `^[0-9]{4}-([0-9]{1,2})`
	dayPart   = `^[0-9]{4}-[0-9]{1,2}-([0-9]{1,2})`
	timePart  = `^[0-9]{4}-[0-9]{1,2}-[0-9]{1,2}[ T]([0-9]{2}:[0-9]{2}(:[0-9]{2}(\.[0-9]{1,6})?)?)`
)

func guard(col, pattern string) string {
	return fmt.Sprintf("%[1]s IS NOT NULL AND %[1]s <> '' AND %[1]s ~ '%[2]s'", col, pattern)
}

func castNumeric(col string) string {
	return fmt.Sprintf("(CASE WHEN %s THEN REPLACE(REPLACE(%s, ',', ''), '$', '')::numeric END)", guard(col, numericPattern), col)
}

// dateText is the trimmed column with m/d/yyyy rewritten to yyyy-m-d.
func dateText(col string) string {
	return fmt.Sprintf(`REGEXP_REPLACE(TRIM(%s::text), '%s', '\3-\1-\2')`, col, usDatePrefix)
}

func datePart(text, pattern string) string {
	return fmt.Sprintf("SUBSTRING(%s FROM '%s')::int", text, pattern)
}

// castDate is NULL unless the value is a real calendar date, optionally
// followed by a valid time of day. Each CASE level only runs once the
// previous one has proven its inputs safe.
func castDate(col string) string {
	text := dateText(col)
	y, m, d := datePart(text, yearPart), datePart(text, monthPart), datePart(text, dayPart)
	day := fmt.Sprintf("(MAKE_DATE(%s, %s, 1) + (%s - 1))", y, m, d)
	return fmt.Sprintf(`(CASE WHEN %[1]s ~ '%[2]s' THEN
	CASE WHEN %[3]s >= 1 AND %[4]s BETWEEN 1 AND 12 AND %[5]s BETWEEN 1 AND 31 THEN
		CASE WHEN EXTRACT(MONTH FROM %[6]s) = %[4]s THEN %[6]s END
	END
END)`, text, datePattern, y, m, d, day)
}

// castTimestamp is castDate plus the time of day, midnight when absent. A
// zone suffix is accepted and ignored, as ::timestamp does.
func castTimestamp(col string) string {
	text := dateText(col)
	return fmt.Sprintf("(CASE WHEN %[1]s ~ '%[2]s' THEN %[3]s + COALESCE(SUBSTRING(%[1]s FROM '%[4]s')::time, TIME '00:00') END)",
		text, datePattern, castDate(col), timePart)
}

// literal quotes a constant for inlining. Only used for fixed status values.
func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func literalList(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = literal(v)
	}
	return strings.Join(quoted, ", ")
}
