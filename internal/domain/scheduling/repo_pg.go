package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// slotIndexName is the partial unique index backing the no-double-booking
// invariant; see migrations/001_appointment.sql.
const slotIndexName = "appointment_scheduled_slot_key"

const uniqueViolation = "23505"

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type appointmentRepoPG struct{ db queryable }

// NewAppointmentRepoPG accepts a *pgxpool.Pool or anything with the same
// query methods.
func NewAppointmentRepoPG(db queryable) AppointmentRepository {
	return &appointmentRepoPG{db: db}
}

const apptCols = `id, subject_id, to_char(slot_date, 'YYYY-MM-DD'), to_char(slot_time, 'HH24:MI'),
	status, notes, created_at, updated_at`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a                        Appointment
		dateStr, timeStr, status string
	)
	if err := row.Scan(&a.ID, &a.SubjectID, &dateStr, &timeStr, &status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if a.Date, err = ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("stored slot_date %q: %w", dateStr, err)
	}
	if a.Time, err = ParseTime(timeStr); err != nil {
		return nil, fmt.Errorf("stored slot_time %q: %w", timeStr, err)
	}
	if a.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) FindBySubjectAndSlot(ctx context.Context, subjectID int64, s Slot) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE subject_id = $1 AND slot_date = $2::date AND slot_time = $3::time
		ORDER BY created_at`, subjectID, s.Date.String(), s.Time.String())
	if err != nil {
		return nil, fmt.Errorf("find appointments by slot: %w", err)
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, fmt.Errorf("scan appointments by slot: %w", err)
	}
	return items, nil
}

func (r *appointmentRepoPG) Save(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointment (id, subject_id, slot_date, slot_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8)`,
		a.ID, a.SubjectID, a.Date.String(), a.Time.String(), string(a.Status), a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slotIndexName {
			return &Violation{Kind: DuplicateSlot, Field: FieldSlot}
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointment SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var current string
	err = r.db.QueryRow(ctx, `SELECT status FROM appointment WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("read appointment status: %w", err)
	}
	return &Violation{Kind: AlreadyFinalized, Field: FieldStatus}
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppointment(r.db.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) ListBySubject(ctx context.Context, subjectID int64, status Status, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE subject_id = $1`
	args := []interface{}{subjectID}
	idx := 2
	if status != "" {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, string(status))
		idx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	query := `SELECT ` + apptCols + ` FROM appointment` + where +
		fmt.Sprintf(` ORDER BY slot_date, slot_time LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan appointments: %w", err)
	}
	return items, total, nil
}
