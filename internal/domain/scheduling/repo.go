package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentRepository is the persistence collaborator. Save must enforce
// one scheduled appointment per (subject, date, time) and report a clash as
// ErrDuplicateSlot. UpdateStatus only succeeds when the stored status still
// equals from; otherwise it returns ErrAlreadyFinalized.
type AppointmentRepository interface {
	FindBySubjectAndSlot(ctx context.Context, subjectID int64, s Slot) ([]*Appointment, error)
	Save(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListBySubject(ctx context.Context, subjectID int64, status Status, limit, offset int) ([]*Appointment, int, error)
}
