package duedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the display format of a due date, e.g. "March 15, 2024 at 2:00 PM".
// Stored task dates round-trip through Parse and Format, so it must stay bit-exact.
const Layout = "January 2, 2006 at 3:04 PM"

const (
	dateLayout  = "January 2, 2006"
	clockLayout = "3:04 PM"
)

// Sentinel is the instant an unparsable due text maps to. It sorts as early
// as possible and is always in the past for reminder purposes.
var Sentinel = time.Unix(0, 0)

// duePattern matches "<Month> <Day>, <Year> at <Hour>:<Minute> <AM|PM>"
var duePattern = regexp.MustCompile(`^(\w+)\s+(\d{1,2}),\s+(\d{4})\s+at\s+(\d{1,2}):(\d{2})\s+([AaPp][Mm])$`)

var months = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June,
	"July": time.July, "August": time.August, "September": time.September,
	"October": time.October, "November": time.November, "December": time.December,
}

// Result is the outcome of parsing a due text. When OK is false, Time holds
// Sentinel.
type Result struct {
	Time time.Time
	OK   bool
}

// MonthIndex returns the zero-based month (January is 0).
func (r Result) MonthIndex() int {
	return int(r.Time.Month()) - 1
}

// Before orders results ascending by instant. Unparsed results come before
// every parsed one and are equal to each other.
func (r Result) Before(other Result) bool {
	if !r.OK || !other.OK {
		return !r.OK && other.OK
	}
	return r.Time.Before(other.Time)
}

// Parse parses a due text in the local time zone.
func Parse(text string) Result {
	return ParseIn(text, time.Local)
}

// ParseIn parses a due text in loc. It never fails: anything that does not
// match the display format yields an unparsed Result.
func ParseIn(text string, loc *time.Location) Result {
	unparsed := Result{Time: Sentinel.In(loc)}

	match := duePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return unparsed
	}

	month, ok := months[match[1]]
	if !ok {
		return unparsed
	}

	// The pattern guarantees digits, so Atoi cannot fail here
	day, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	hour, _ := strconv.Atoi(match[4])
	minute, _ := strconv.Atoi(match[5])

	if hour > 12 || minute > 59 || day < 1 || day > daysIn(month, year) {
		return unparsed
	}

	switch strings.ToUpper(match[6]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	return Result{
		Time: time.Date(year, month, day, hour, minute, 0, 0, loc),
		OK:   true,
	}
}

// Format renders t in the display format.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatDate renders the date half, e.g. "March 15, 2024".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatClock renders the time half, e.g. "2:00 PM".
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// Join combines a date half and a clock half into a due text.
func Join(date, clock string) string {
	return strings.TrimSpace(date) + " at " + strings.TrimSpace(clock)
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
