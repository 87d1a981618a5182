package scheduling

import "time"

// Clinic opening hours as minutes since midnight. Closing is exclusive.
const (
	OpeningMinute = 8 * 60
	ClosingMinute = 18 * 60
)

// Slot is the (date, time) pair an appointment occupies.
type Slot struct {
	Date CalendarDate `json:"date"`
	Time TimeOfDay    `json:"time"`
}

func (s Slot) String() string { return s.Date.String() + " " + s.Time.String() }

// ParseSlot parses both halves of a slot and reports every malformed field.
func ParseSlot(dateStr, timeStr string) (Slot, Violations) {
	var (
		s   Slot
		bad Violations
		err error
	)
	if s.Date, err = ParseDate(dateStr); err != nil {
		bad = append(bad, &Violation{Kind: MalformedInput, Field: FieldDate})
	}
	if s.Time, err = ParseTime(timeStr); err != nil {
		bad = append(bad, &Violation{Kind: MalformedInput, Field: FieldTime})
	}
	return s, bad
}

// IsWeekday reports whether d falls on Monday through Friday.
func IsWeekday(d CalendarDate) bool {
	wd := d.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsWithinBusinessHours reports whether t is in [08:00, 18:00).
func IsWithinBusinessHours(t TimeOfDay) bool {
	m := t.MinutesSinceMidnight()
	return m >= OpeningMinute && m < ClosingMinute
}

// Engine evaluates scheduling rules against the civil calendar of one
// location. The zero reference time means "now".
type Engine struct {
	loc *time.Location
}

// NewEngine returns an engine for loc, or for the process local zone when
// loc is nil.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) reference(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now().In(e.loc)
	}
	return now.In(e.loc)
}

// Today returns the civil date of now in the engine's location.
func (e *Engine) Today(now time.Time) CalendarDate {
	return DateOf(e.reference(now))
}

// Instant places a slot on the engine's civil calendar.
func (e *Engine) Instant(s Slot) time.Time {
	return Combine(s.Date, s.Time, e.loc)
}

// IsNotPastDate compares calendar days only; any time today passes.
func (e *Engine) IsNotPastDate(d CalendarDate, now time.Time) bool {
	return !d.Before(e.Today(now))
}

// IsFutureInstant requires the slot to start strictly after now.
func (e *Engine) IsFutureInstant(s Slot, now time.Time) bool {
	return e.Instant(s).After(e.reference(now))
}

type rule struct {
	kind      ViolationKind
	field     string
	needsDate bool
	needsTime bool
	ok        func(e *Engine, s Slot, now time.Time) bool
}

// Evaluation order matters for fail-fast callers.
var ruleSet = []rule{
	{
		kind: PastDate, field: FieldDate, needsDate: true,
		ok: func(e *Engine, s Slot, now time.Time) bool { return e.IsNotPastDate(s.Date, now) },
	},
	{
		kind: WeekendNotAllowed, field: FieldDate, needsDate: true,
		ok: func(_ *Engine, s Slot, _ time.Time) bool { return IsWeekday(s.Date) },
	},
	{
		kind: OutsideBusinessHours, field: FieldTime, needsTime: true,
		ok: func(_ *Engine, s Slot, _ time.Time) bool { return IsWithinBusinessHours(s.Time) },
	},
	{
		kind: PastDateTime, field: FieldTime, needsDate: true, needsTime: true,
		ok: func(e *Engine, s Slot, now time.Time) bool { return e.IsFutureInstant(s, now) },
	},
}

func (e *Engine) evaluate(s Slot, haveDate, haveTime bool, now time.Time, failFast bool) Violations {
	now = e.reference(now)
	var out Violations
	for _, r := range ruleSet {
		if (r.needsDate && !haveDate) || (r.needsTime && !haveTime) {
			continue
		}
		if r.ok(e, s, now) {
			continue
		}
		out = append(out, &Violation{Kind: r.kind, Field: r.field})
		if failFast {
			break
		}
	}
	return out
}

// ValidateSlot runs every rule against an already parsed slot.
func (e *Engine) ValidateSlot(s Slot, now time.Time) Violations {
	return e.evaluate(s, true, true, now, false)
}

// ValidateAll parses and checks a raw slot, returning one violation per
// failing rule. Rules whose inputs are well formed still run when the other
// field is malformed.
func (e *Engine) ValidateAll(dateStr, timeStr string, now time.Time) Violations {
	s, bad := ParseSlot(dateStr, timeStr)
	haveDate, haveTime := true, true
	for _, v := range bad {
		switch v.Field {
		case FieldDate:
			haveDate = false
		case FieldTime:
			haveTime = false
		}
	}
	return append(bad, e.evaluate(s, haveDate, haveTime, now, false)...)
}

// ValidateFailFast parses and checks a raw slot, stopping at the first
// failure. The returned error is a *Violation.
func (e *Engine) ValidateFailFast(dateStr, timeStr string, now time.Time) (Slot, error) {
	s, bad := ParseSlot(dateStr, timeStr)
	if len(bad) > 0 {
		return Slot{}, bad[0]
	}
	if vs := e.evaluate(s, true, true, now, true); len(vs) > 0 {
		return Slot{}, vs[0]
	}
	return s, nil
}
