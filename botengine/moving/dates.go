package moving

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date parse failures, each mapped to its own reply text.
var (
	ErrDateFormat  = errors.New("date format not recognized")
	ErrDateInvalid = errors.New("date does not exist")
	ErrDateTooSoon = errors.New("date is in the past")
	ErrDateTooFar  = errors.New("date is too far ahead")
)

// MaxMoveDateDays bounds how far ahead a move can be scheduled.
const MaxMoveDateDays = 180

var (
	dateSepRe     = regexp.MustCompile(`[/\-]`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?$`)

	nextPrefixRe  = regexp.MustCompile(`(?i)следующ(?:ий|ую|ее|ая)\s+|next\s+|הבא\b`)
	weekdayPrepRe = regexp.MustCompile(`(?i)^(?:в|во|on)\s+|^ב`)

	dayMonthRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+([\p{L}]+)$`)
	monthDayRe = regexp.MustCompile(`(?i)^([\p{L}]+)\s+(\d{1,2})(?:st|nd|rd|th)?$`)
)

// relativeDays maps "today"-style words to a day offset.
var relativeDays = map[string]int{
	"сегодня": 0, "завтра": 1, "послезавтра": 2,
	"today": 0, "tomorrow": 1, "day after tomorrow": 2,
	"היום": 0, "מחר": 1, "מחרתיים": 2,
}

// weekdayNames maps localized weekday names to time.Weekday. Hebrew weeks
// start on Sunday, so יום ראשון is Sunday.
var weekdayNames = map[string]time.Weekday{
	"понедельник": time.Monday, "пн": time.Monday,
	"вторник": time.Tuesday, "вт": time.Tuesday,
	"среда": time.Wednesday, "среду": time.Wednesday, "ср": time.Wednesday,
	"четверг": time.Thursday, "чт": time.Thursday,
	"пятница": time.Friday, "пятницу": time.Friday, "пт": time.Friday,
	"суббота": time.Saturday, "субботу": time.Saturday, "сб": time.Saturday,
	"воскресенье": time.Sunday, "вс": time.Sunday,

	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,

	"ראשון": time.Sunday, "שני": time.Monday, "שלישי": time.Tuesday,
	"רביעי": time.Wednesday, "חמישי": time.Thursday, "שישי": time.Friday,
	"שבת": time.Saturday,
}

// monthNames covers ru nominative/genitive, en full/abbrev and he.
var monthNames = map[string]time.Month{
	"январь": time.January, "января": time.January,
	"февраль": time.February, "февраля": time.February,
	"март": time.March, "марта": time.March,
	"апрель": time.April, "апреля": time.April,
	"май": time.May, "мая": time.May,
	"июнь": time.June, "июня": time.June,
	"июль": time.July, "июля": time.July,
	"август": time.August, "августа": time.August,
	"сентябрь": time.September, "сентября": time.September,
	"октябрь": time.October, "октября": time.October,
	"ноябрь": time.November, "ноября": time.November,
	"декабрь": time.December, "декабря": time.December,

	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,

	"ינואר": time.January, "פברואר": time.February, "מרץ": time.March,
	"אפריל": time.April, "מאי": time.May, "יוני": time.June,
	"יולי": time.July, "אוגוסט": time.August, "ספטמבר": time.September,
	"אוקטובר": time.October, "נובמבר": time.November, "דצמבר": time.December,
}

// ParseDate parses a move date from user text relative to now. Accepts
// numeric DD.MM[.YYYY] (also with / or - separators), relative words,
// weekday names with an optional "next" prefix, and day + month name in
// either order. The result is clamped to [today, today+MaxMoveDateDays].
func ParseDate(text string, now time.Time) (time.Time, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return time.Time{}, ErrDateFormat
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	norm := dateSepRe.ReplaceAllString(t, ".")
	if m := numericDateRe.FindStringSubmatch(norm); m != nil {
		return parseNumericDate(m, today)
	}

	if d, err := parseNaturalDate(t, today); err == nil {
		return checkDateWindow(d, today)
	}
	return time.Time{}, ErrDateFormat
}

func parseNumericDate(m []string, today time.Time) (time.Time, error) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, ErrDateInvalid
	}

	year := today.Year()
	explicitYear := false
	if m[3] != "" {
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 2000
		}
		year = y
		explicitYear = true
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
	// time.Date normalizes overflow, e.g. 31.02 -> 02/03. Treat that as
	// a nonexistent date rather than silently shifting it.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, ErrDateInvalid
	}
	if !explicitYear && d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return checkDateWindow(d, today)
}

func checkDateWindow(d, today time.Time) (time.Time, error) {
	if d.Before(today) {
		return time.Time{}, ErrDateTooSoon
	}
	if d.After(today.AddDate(0, 0, MaxMoveDateDays)) {
		return time.Time{}, ErrDateTooFar
	}
	return d, nil
}

func parseNaturalDate(t string, today time.Time) (time.Time, error) {
	if off, ok := relativeDays[t]; ok {
		return today.AddDate(0, 0, off), nil
	}

	// "следующий вторник" / "next friday" / weekday with preposition.
	wd := t
	next := false
	if nextPrefixRe.MatchString(wd) {
		next = true
		wd = strings.TrimSpace(nextPrefixRe.ReplaceAllString(wd, ""))
	}
	wd = strings.TrimSpace(weekdayPrepRe.ReplaceAllString(wd, ""))
	if target, ok := weekdayNames[wd]; ok {
		days := int(target-today.Weekday()+7) % 7
		if days == 0 {
			days = 7 // same weekday means the coming one, not today
		}
		if next {
			days += 7
		}
		return today.AddDate(0, 0, days), nil
	}

	// "25 марта" / "march 25th".
	var dayStr, monthStr string
	if m := dayMonthRe.FindStringSubmatch(t); m != nil {
		dayStr, monthStr = m[1], m[2]
	} else if m := monthDayRe.FindStringSubmatch(t); m != nil {
		monthStr, dayStr = m[1], m[2]
	}
	if dayStr != "" {
		month, ok := monthNames[monthStr]
		if !ok {
			return time.Time{}, ErrDateFormat
		}
		day, _ := strconv.Atoi(dayStr)
		d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
		if d.Day() != day || d.Month() != month {
			return time.Time{}, ErrDateInvalid
		}
		if d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d, nil
	}
	return time.Time{}, ErrDateFormat
}

var exactTimeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseExactTime parses "HH:MM" (also with . or - separators) and returns
// it normalized to zero-padded 24h form.
func ParseExactTime(text string) (string, bool) {
	t := strings.TrimSpace(text)
	t = strings.ReplaceAll(t, ".", ":")
	t = strings.ReplaceAll(t, "-", ":")
	m := exactTimeRe.FindStringSubmatch(t)
	if m == nil {
		return "", false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, min), true
}
