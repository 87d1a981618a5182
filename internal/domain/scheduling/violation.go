package scheduling

import (
	"errors"
	"strings"
)

// ViolationKind identifies which scheduling rule rejected a request.
type ViolationKind string

const (
	MalformedInput           ViolationKind = "malformed_input"
	WeekendNotAllowed        ViolationKind = "weekend_not_allowed"
	OutsideBusinessHours     ViolationKind = "outside_business_hours"
	PastDate                 ViolationKind = "past_date"
	PastDateTime             ViolationKind = "past_date_time"
	DuplicateSlot            ViolationKind = "duplicate_slot"
	CancellationWindowClosed ViolationKind = "cancellation_window_closed"
	AlreadyFinalized         ViolationKind = "already_finalized"
)

// Fields a violation can point at.
const (
	FieldDate   = "date"
	FieldTime   = "time"
	FieldSlot   = "slot"
	FieldStatus = "status"
)

// Violation is a recoverable rule failure. It carries no user-facing text;
// front-ends translate Kind themselves.
type Violation struct {
	Kind  ViolationKind `json:"kind"`
	Field string        `json:"field,omitempty"`
}

func (v *Violation) Error() string {
	if v.Field == "" {
		return string(v.Kind)
	}
	return v.Field + ": " + string(v.Kind)
}

// Is matches any violation of the same kind, regardless of field.
func (v *Violation) Is(target error) bool {
	t, ok := target.(*Violation)
	return ok && t.Kind == v.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrMalformedInput           = &Violation{Kind: MalformedInput}
	ErrWeekendNotAllowed        = &Violation{Kind: WeekendNotAllowed}
	ErrOutsideBusinessHours     = &Violation{Kind: OutsideBusinessHours}
	ErrPastDate                 = &Violation{Kind: PastDate}
	ErrPastDateTime             = &Violation{Kind: PastDateTime}
	ErrDuplicateSlot            = &Violation{Kind: DuplicateSlot, Field: FieldSlot}
	ErrCancellationWindowClosed = &Violation{Kind: CancellationWindowClosed, Field: FieldDate}
	ErrAlreadyFinalized         = &Violation{Kind: AlreadyFinalized, Field: FieldStatus}
)

// Violations is the accumulated result of ValidateAll.
type Violations []*Violation

func (vs Violations) Error() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

func (vs Violations) Unwrap() []error {
	errs := make([]error, len(vs))
	for i, v := range vs {
		errs[i] = v
	}
	return errs
}

// Has reports whether any violation is of kind k.
func (vs Violations) Has(k ViolationKind) bool {
	for _, v := range vs {
		if v.Kind == k {
			return true
		}
	}
	return false
}

// Kinds lists the violation kinds in evaluation order.
func (vs Violations) Kinds() []ViolationKind {
	out := make([]ViolationKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

// AsViolations extracts the rule failures carried by err, if any.
func AsViolations(err error) (Violations, bool) {
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	var v *Violation
	if errors.As(err, &v) {
		return Violations{v}, true
	}
	return nil, false
}
