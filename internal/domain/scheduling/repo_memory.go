package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type slotKey struct {
	subjectID int64
	slot      Slot
}

// MemoryRepository is an in-process AppointmentRepository. It enforces the
// same scheduled-slot uniqueness as the Postgres index and is used by
// STORAGE=memory and tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*Appointment
	scheduled    map[slotKey]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[uuid.UUID]*Appointment),
		scheduled:    make(map[slotKey]uuid.UUID),
	}
}

func (m *MemoryRepository) FindBySubjectAndSlot(_ context.Context, subjectID int64, s Slot) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Appointment
	for _, a := range m.appointments {
		if a.SubjectID == subjectID && a.Date == s.Date && a.Time == s.Time {
			cp := *a
			results = append(results, &cp)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

func (m *MemoryRepository) Save(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey{subjectID: a.SubjectID, slot: a.Slot()}
	if a.Status == StatusScheduled {
		if _, taken := m.scheduled[key]; taken {
			return &Violation{Kind: DuplicateSlot, Field: FieldSlot}
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.appointments[a.ID] = &cp
	if a.Status == StatusScheduled {
		m.scheduled[key] = a.ID
	}
	return nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	if a.Status != from {
		return &Violation{Kind: AlreadyFinalized, Field: FieldStatus}
	}
	key := slotKey{subjectID: a.SubjectID, slot: a.Slot()}
	if from == StatusScheduled {
		delete(m.scheduled, key)
	}
	a.Status = to
	a.UpdatedAt = at
	if to == StatusScheduled {
		m.scheduled[key] = a.ID
	}
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) ListBySubject(_ context.Context, subjectID int64, status Status, limit, offset int) ([]*Appointment, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Appointment
	for _, a := range m.appointments {
		if a.SubjectID != subjectID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Date != results[j].Date {
			return results[i].Date.Before(results[j].Date)
		}
		return results[i].Time.MinutesSinceMidnight() < results[j].Time.MinutesSinceMidnight()
	})

	total := len(results)
	if offset >= total {
		return nil, total, nil
	}
	results = results[offset:]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, total, nil
}
