package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

// ParseStatus maps external spellings onto the canonical status. The British
// "cancelled" is accepted for older clients and stored data.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled":
		return StatusScheduled, nil
	case "canceled", "cancelled":
		return StatusCanceled, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid appointment status: %q", s)
}

// IsTerminal reports whether no further transitions are defined.
func (s Status) IsTerminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

func (s Status) String() string { return string(s) }

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AppointmentRequest is a booking that has passed parsing but is not yet
// persisted.
type AppointmentRequest struct {
	SubjectID int64
	Slot      Slot
	Notes     *string
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID        uuid.UUID    `json:"id"`
	SubjectID int64        `json:"subject_id"`
	Date      CalendarDate `json:"date"`
	Time      TimeOfDay    `json:"time"`
	Status    Status       `json:"status"`
	Notes     *string      `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Slot returns the (date, time) pair the appointment occupies.
func (a *Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time}
}

// Occupies reports whether a blocks slot s for its subject.
func (a *Appointment) Occupies(s Slot) bool {
	return a.Status == StatusScheduled && a.Date == s.Date && a.Time == s.Time
}
