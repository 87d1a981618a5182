package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	datePattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	timePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// CalendarDate is a civil date with no time zone attached.
//
// Day counts are not validated against the month: 2025-02-31 is a valid
// CalendarDate and rolls over to 2025-03-03 once turned into an instant.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (CalendarDate, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return CalendarDate{}, &Violation{Kind: MalformedInput, Field: FieldDate}
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return CalendarDate{Year: y, Month: mo, Day: d}, nil
}

// DateOf returns the civil date of t as seen in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: int(m), Day: d}
}

// Midnight returns the start of the day in loc.
func (d CalendarDate) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// Weekday follows the Sunday=0 .. Saturday=6 numbering.
func (d CalendarDate) Weekday() time.Weekday {
	return d.Midnight(time.UTC).Weekday()
}

// AddDays returns the normalized date n days later.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Midnight(time.UTC).AddDate(0, 0, n))
}

// Normalize rolls impossible days forward, turning 2025-02-31 into 2025-03-03.
func (d CalendarDate) Normalize() CalendarDate {
	return d.AddDays(0)
}

// Compare orders dates after normalization, so 2025-02-31 sorts as 2025-03-03.
func (d CalendarDate) Compare(other CalendarDate) int {
	return d.Midnight(time.UTC).Compare(other.Midnight(time.UTC))
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }

func (d CalendarDate) IsZero() bool { return d == CalendarDate{} }

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// ParseTime parses H:mm or HH:mm.
func ParseTime(s string) (TimeOfDay, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, &Violation{Kind: MalformedInput, Field: FieldTime}
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	return TimeOfDay{Hours: h, Minutes: mi}, nil
}

// MinutesSinceMidnight returns the time as an offset from 00:00.
func (t TimeOfDay) MinutesSinceMidnight() int {
	return t.Hours*60 + t.Minutes
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Combine interprets date and time as a wall-clock reading in loc.
func Combine(d CalendarDate, t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, t.Hours, t.Minutes, 0, 0, loc)
}
