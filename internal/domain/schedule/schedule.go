// Package schedule evaluates a listing's published weekly opening
// hours against an instant in the business's fixed timezone. The hours
// text is raw scraper output ("Closed", "Open 24 hours", "9 AM to
// 6 PM"); anything unparseable is treated as not open, never an error.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kiezvet/vetdirectory/internal/domain/entities"
)

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var (
	clockPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?$`)
	rangePattern = regexp.MustCompile(`(?i)([0-9]{1,2}(?::[0-9]{2})?\s*(?:AM|PM)?)\s*to\s*([0-9]{1,2}(?::[0-9]{2})?\s*(?:AM|PM))`)
	open24       = regexp.MustCompile(`(?i)Open 24 hours`)
	closed       = regexp.MustCompile(`(?i)Closed`)
	meridiemOnly = regexp.MustCompile(`(?i)(AM|PM)`)
	anySpaces    = regexp.MustCompile(`\s+`)
)

// TodayName resolves the weekday name of now in the given zone, using
// that zone's local date rather than the UTC date.
func TodayName(now time.Time, loc *time.Location) string {
	return weekdayNames[now.In(loc).Weekday()]
}

// sanitize replaces non-breaking and narrow no-break spaces (Google
// emits U+202F between the minutes and the meridiem), collapses runs
// of whitespace, and trims.
func sanitize(s string) string {
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)
	return strings.TrimSpace(anySpaces.ReplaceAllString(s, " "))
}

// ParseClockTime parses a 12-hour clock token like "9", "9:30" or
// "10:30 PM" into minutes since midnight. A token without its own
// AM/PM marker uses fallbackMeridiem; if neither supplies one the
// parse fails. Hour 12 normalizes to 0 before the PM offset, so
// "12 AM" is minute 0 and "12 PM" is minute 720.
func ParseClockTime(token, fallbackMeridiem string) (int, bool) {
	m := clockPattern.FindStringSubmatch(sanitize(token))
	if m == nil {
		return 0, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	meridiem := strings.ToUpper(m[3])
	if meridiem == "" {
		meridiem = strings.ToUpper(fallbackMeridiem)
	}
	if meridiem != "AM" && meridiem != "PM" {
		return 0, false
	}

	if hour == 12 {
		hour = 0
	}
	total := hour*60 + minute
	if meridiem == "PM" {
		total += 12 * 60
	}
	return total, true
}

// ParseRange extracts a "<start> to <end>" span from raw hours text
// and returns both bounds as minutes since midnight. The end bound
// always carries its own meridiem; a bare start inherits it.
func ParseRange(text string) (startMin, endMin int, ok bool) {
	m := rangePattern.FindStringSubmatch(sanitize(text))
	if m == nil {
		return 0, 0, false
	}

	endToken := sanitize(m[2])
	inferred := strings.ToUpper(meridiemOnly.FindString(endToken))

	startMin, ok = ParseClockTime(sanitize(m[1]), inferred)
	if !ok {
		return 0, 0, false
	}
	endMin, ok = ParseClockTime(endToken, "")
	if !ok {
		return 0, 0, false
	}
	return startMin, endMin, true
}

// ConvertRangeTo24h renders raw hours text as a zero-padded 24-hour
// range, e.g. "9 AM to 3 PM" becomes "09:00–15:00". Overnight spans
// get a " (next day)" suffix. "Open 24 hours" and "Closed" pass
// through, and text in any other shape is returned as-is.
func ConvertRangeTo24h(raw string) string {
	text := sanitize(raw)
	if text == "" {
		return ""
	}
	if open24.MatchString(text) {
		return "Open 24 hours"
	}
	if closed.MatchString(text) {
		return "Closed"
	}

	startMin, endMin, ok := ParseRange(text)
	if !ok {
		return text
	}

	if endMin < startMin {
		return formatMinutes(startMin) + "–" + formatMinutes(endMin) + " (next day)"
	}
	return formatMinutes(startMin) + "–" + formatMinutes(endMin)
}

func formatMinutes(min int) string {
	h := (min / 60) % 24
	m := min % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// IsOpenAt reports whether the published hours cover the instant now,
// evaluated on the wall clock of loc. Days without an entry, blank
// hours text and unparseable ranges all read as closed. The end bound
// is inclusive: a clinic listed "9 AM to 6 PM" is still open at 18:00
// sharp, matching how the directory has always displayed it.
func IsOpenAt(hours []entities.OpeningHoursEntry, now time.Time, loc *time.Location) bool {
	if len(hours) == 0 {
		return false
	}

	today := TodayName(now, loc)

	var text string
	for _, entry := range hours {
		if entry.Day == today {
			text = sanitize(entry.Hours)
			break
		}
	}
	if text == "" {
		return false
	}

	if open24.MatchString(text) {
		return true
	}
	if closed.MatchString(text) {
		return false
	}

	startMin, endMin, ok := ParseRange(text)
	if !ok {
		return false
	}

	local := now.In(loc)
	nowMin := local.Hour()*60 + local.Minute()

	// Overnight span, e.g. "10 PM to 2 AM"
	if endMin < startMin {
		return nowMin >= startMin || nowMin < endMin
	}
	return nowMin >= startMin && nowMin <= endMin
}
