package dates

import (
	"regexp"
	"strconv"
	"time"

	"shared-daily-menu/internal/errors"
)

// The product's only supported region is a fixed UTC+9 offset. This is
// deliberately not a timezone-aware calculation: no DST, no locale.
var fixedZone = time.FixedZone("UTC+9", 9*60*60)

const Layout = "2006-01-02"

var civilDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ParseCivilDate accepts exactly YYYY-MM-DD with month 01-12 and day
// 01-31. The day is not validated against the month's length, so
// "2024-02-31" parses as syntactically valid. Documented quirk.
func ParseCivilDate(s string) (year, month, day int, ok bool) {
	m := civilDatePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	day, _ = strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// ToInstant maps a civil date's local midnight in the fixed offset to
// an absolute UTC instant. Calendrically nonexistent days roll forward
// the way the runtime normalizes them.
func ToInstant(s string) (time.Time, error) {
	year, month, day, ok := ParseCivilDate(s)
	if !ok {
		return time.Time{}, errors.BadRequest("invalid date format, use YYYY-MM-DD", nil)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, fixedZone).UTC(), nil
}

// FromInstant converts a persisted instant back to its civil-date
// string in the fixed zone.
func FromInstant(t time.Time) string {
	return t.In(fixedZone).Format(Layout)
}

// Today returns the current civil-date string in the fixed zone,
// computed by shifting the current instant by the offset and
// truncating to the date.
func Today() string {
	return time.Now().UTC().Add(9 * time.Hour).Format(Layout)
}
