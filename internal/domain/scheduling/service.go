package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medbook/medbook/internal/platform/metrics"
)

var ErrMissingSubject = errors.New("subject_id is required")

// Operation names used for metrics and logs.
const (
	OpPrecheck = "precheck"
	OpBook     = "book"
	OpCancel   = "cancel"
	OpComplete = "complete"
)

type Service struct {
	appointments AppointmentRepository
	engine       *Engine
	clock        func() time.Time
	metrics      *metrics.SchedulingMetrics
	logger       zerolog.Logger
}

type Option func(*Service)

// WithClock pins the reference time used by the past-date rules and the
// cancellation window.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func WithMetrics(m *metrics.SchedulingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(appt AppointmentRepository, engine *Engine, opts ...Option) *Service {
	if engine == nil {
		engine = NewEngine(nil)
	}
	s := &Service{
		appointments: appt,
		engine:       engine,
		clock:        time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) now() time.Time {
	return s.clock().In(s.engine.Location())
}

func (s *Service) observe(op string, err error) {
	if err == nil {
		s.metrics.ObserveOperation(op, metrics.OutcomeAccepted)
		return
	}
	vs, ok := AsViolations(err)
	if !ok {
		s.metrics.ObserveOperation(op, metrics.OutcomeError)
		return
	}
	s.metrics.ObserveOperation(op, metrics.OutcomeRejected)
	for _, v := range vs {
		s.metrics.ObserveViolation(op, string(v.Kind))
	}
}

// Precheck runs every rule and reports all failures. It is advisory: Book
// re-validates and is the only authority.
func (s *Service) Precheck(dateStr, timeStr string) Violations {
	vs := s.engine.ValidateAll(dateStr, timeStr, s.now())
	if len(vs) > 0 {
		s.observe(OpPrecheck, vs)
	} else {
		s.observe(OpPrecheck, nil)
	}
	return vs
}

// Book validates the slot, checks the subject's existing bookings, and
// stores a scheduled appointment. A clash detected by the repository after
// the pre-flight check is reported the same way, as DuplicateSlot.
func (s *Service) Book(ctx context.Context, subjectID int64, dateStr, timeStr string, notes *string) (*Appointment, error) {
	a, err := s.book(ctx, subjectID, dateStr, timeStr, notes)
	s.observe(OpBook, err)
	if err != nil {
		s.logger.Debug().Err(err).Int64("subject_id", subjectID).
			Str("date", dateStr).Str("time", timeStr).Msg("booking rejected")
		return nil, err
	}
	s.logger.Info().Str("appointment_id", a.ID.String()).Int64("subject_id", subjectID).
		Str("slot", a.Slot().String()).Msg("appointment booked")
	return a, nil
}

func (s *Service) book(ctx context.Context, subjectID int64, dateStr, timeStr string, notes *string) (*Appointment, error) {
	if subjectID <= 0 {
		return nil, ErrMissingSubject
	}
	now := s.now()
	slot, err := s.engine.ValidateFailFast(dateStr, timeStr, now)
	if err != nil {
		return nil, err
	}
	req := AppointmentRequest{
		SubjectID: subjectID,
		Slot:      Slot{Date: slot.Date.Normalize(), Time: slot.Time},
		Notes:     notes,
	}

	existing, err := s.appointments.FindBySubjectAndSlot(ctx, req.SubjectID, req.Slot)
	if err != nil {
		return nil, err
	}
	if err := CheckConflict(req.SubjectID, req.Slot, existing); err != nil {
		return nil, err
	}

	a := &Appointment{
		SubjectID: req.SubjectID,
		Date:      req.Slot.Date,
		Time:      req.Slot.Time,
		Status:    StatusScheduled,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel cancels one of subjectID's appointments if the lifecycle guard
// allows it.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, subjectID int64) (*Appointment, error) {
	a, err := s.GetAppointment(ctx, id, subjectID)
	if err == nil {
		err = s.transition(ctx, a, s.engine.Cancel)
	}
	s.observe(OpCancel, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("appointment_id", id.String()).Int64("subject_id", subjectID).Msg("appointment canceled")
	return a, nil
}

// Complete records the external completion event for an appointment.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err == nil {
		err = s.transition(ctx, a, s.engine.Complete)
	}
	s.observe(OpComplete, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("appointment_id", id.String()).Msg("appointment completed")
	return a, nil
}

func (s *Service) transition(ctx context.Context, a *Appointment, apply func(*Appointment, time.Time) error) error {
	from := a.Status
	if err := apply(a, s.now()); err != nil {
		return err
	}
	return s.appointments.UpdateStatus(ctx, a.ID, from, a.Status, a.UpdatedAt)
}

// GetAppointment returns an appointment owned by subjectID. Appointments of
// other subjects are reported as not found.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID, subjectID int64) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.SubjectID != subjectID {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (s *Service) ListAppointments(ctx context.Context, subjectID int64, status Status, limit, offset int) ([]*Appointment, int, error) {
	if subjectID <= 0 {
		return nil, 0, ErrMissingSubject
	}
	return s.appointments.ListBySubject(ctx, subjectID, status, limit, offset)
}
