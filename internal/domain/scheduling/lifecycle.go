package scheduling

import "time"

// CancellationLeadDays is how many days before the appointment date a
// cancellation must happen.
const CancellationLeadDays = 1

// CanCancel reports whether a may be canceled on the civil date today.
// It does not modify a.
func CanCancel(a *Appointment, today CalendarDate) error {
	if a.Status != StatusScheduled {
		return &Violation{Kind: AlreadyFinalized, Field: FieldStatus}
	}
	if a.Date.Before(today.AddDays(CancellationLeadDays)) {
		return &Violation{Kind: CancellationWindowClosed, Field: FieldDate}
	}
	return nil
}

// Cancel applies the Scheduled -> Canceled transition when CanCancel allows
// it. Canceling twice fails with AlreadyFinalized.
func (e *Engine) Cancel(a *Appointment, now time.Time) error {
	now = e.reference(now)
	if err := CanCancel(a, DateOf(now)); err != nil {
		return err
	}
	a.Status = StatusCanceled
	a.UpdatedAt = now
	return nil
}

// Complete applies the externally driven Scheduled -> Completed transition.
func (e *Engine) Complete(a *Appointment, now time.Time) error {
	if a.Status != StatusScheduled {
		return &Violation{Kind: AlreadyFinalized, Field: FieldStatus}
	}
	a.Status = StatusCompleted
	a.UpdatedAt = e.reference(now)
	return nil
}
