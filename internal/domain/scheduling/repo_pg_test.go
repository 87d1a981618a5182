package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var apptColumns = []string{"id", "subject_id", "slot_date", "slot_time", "status", "notes", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, AppointmentRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewAppointmentRepoPG(mock)
}

func TestAppointmentRepoPG_Save(t *testing.T) {
	mock, repo := newMockRepo(t)
	a := newScheduled(7, CalendarDate{2025, 1, 16}, TimeOfDay{9, 0})

	mock.ExpectExec("INSERT INTO appointment").
		WithArgs(pgxmock.AnyArg(), int64(7), "2025-01-16", "09:00", "scheduled", pgxmock.AnyArg(), refNow, refNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepoPG_Save_DuplicateSlot(t *testing.T) {
	mock, repo := newMockRepo(t)
	a := newScheduled(7, CalendarDate{2025, 1, 16}, TimeOfDay{9, 0})

	mock.ExpectExec("INSERT INTO appointment").
		WithArgs(pgxmock.AnyArg(), int64(7), "2025-01-16", "09:00", "scheduled", pgxmock.AnyArg(), refNow, refNow).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointment_scheduled_slot_key"})

	err := repo.Save(context.Background(), a)
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected duplicate slot, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepoPG_Save_OtherUniqueViolation(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("INSERT INTO appointment").
		WithArgs(pgxmock.AnyArg(), int64(7), "2025-01-16", "09:00", "scheduled", pgxmock.AnyArg(), refNow, refNow).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointment_pkey"})

	err := repo.Save(context.Background(), newScheduled(7, CalendarDate{2025, 1, 16}, TimeOfDay{9, 0}))
	if err == nil || errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected a plain storage error, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.ConstraintName != "appointment_pkey" {
		t.Errorf("expected wrapped pkey violation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepoPG_UpdateStatus(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointment SET status").
		WithArgs(id, "scheduled", "canceled", refNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), id, StatusScheduled, StatusCanceled, refNow); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepoPG_UpdateStatus_Stale(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointment SET status").
		WithArgs(id, "scheduled", "canceled", refNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM appointment").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("completed"))

	err := repo.UpdateStatus(context.Background(), id, StatusScheduled, StatusCanceled, refNow)
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected already finalized, got %v", err)
	}
}

func TestAppointmentRepoPG_UpdateStatus_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointment SET status").
		WithArgs(id, "scheduled", "canceled", refNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM appointment").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	err := repo.UpdateStatus(context.Background(), id, StatusScheduled, StatusCanceled, refNow)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentRepoPG_GetByID(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, subject_id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(apptColumns).
			AddRow(id, int64(7), "2025-01-16", "09:00", "cancelled", (*string)(nil), refNow, refNow))

	a, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if a.ID != id || a.SubjectID != 7 {
		t.Errorf("unexpected identity: %+v", a)
	}
	if a.Date != (CalendarDate{2025, 1, 16}) || a.Time != (TimeOfDay{9, 0}) {
		t.Errorf("unexpected slot: %v", a.Slot())
	}
	if a.Status != StatusCanceled {
		t.Errorf("expected legacy spelling to map to canceled, got %s", a.Status)
	}
}

func TestAppointmentRepoPG_GetByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, subject_id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAppointmentRepoPG_FindBySubjectAndSlot(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	slot := Slot{Date: CalendarDate{2025, 1, 16}, Time: TimeOfDay{9, 0}}

	mock.ExpectQuery("SELECT id, subject_id").
		WithArgs(int64(7), "2025-01-16", "09:00").
		WillReturnRows(pgxmock.NewRows(apptColumns).
			AddRow(id, int64(7), "2025-01-16", "09:00", "scheduled", (*string)(nil), refNow, refNow))

	items, err := repo.FindBySubjectAndSlot(context.Background(), 7, slot)
	if err != nil {
		t.Fatalf("FindBySubjectAndSlot: %v", err)
	}
	if len(items) != 1 || !items[0].Occupies(slot) {
		t.Fatalf("unexpected items: %v", items)
	}
	if err := CheckConflict(7, slot, items); !errors.Is(err, ErrDuplicateSlot) {
		t.Errorf("expected stored row to conflict, got %v", err)
	}
}

func TestAppointmentRepoPG_ListBySubject(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7), "scheduled").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT id, subject_id").
		WithArgs(int64(7), "scheduled", 1, 2).
		WillReturnRows(pgxmock.NewRows(apptColumns).
			AddRow(id, int64(7), "2025-01-17", "11:30", "scheduled", (*string)(nil), refNow, refNow))

	items, total, err := repo.ListBySubject(context.Background(), 7, StatusScheduled, 1, 2)
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if total != 3 || len(items) != 1 || items[0].Time != (TimeOfDay{11, 30}) {
		t.Errorf("unexpected result: total=%d items=%v", total, items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
