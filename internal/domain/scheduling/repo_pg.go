package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docbook/docbook/internal/domain/availability"
	"github.com/docbook/docbook/internal/platform/db"
)

type apptRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &apptRepoPG{pool: pool} }

func (r *apptRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.FromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, date, start_minute, end_minute, status, created_at, updated_at`

func (r *apptRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.StartMinute,
		&a.EndMinute, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &a, nil
}

// Reserve runs the check-and-reserve sequence. It must be called
// inside a transaction: the advisory lock is transaction scoped and
// serializes concurrent attempts for the same doctor and date. The
// exclusion constraint on the appointment table is the backstop.
func (r *apptRepoPG) Reserve(ctx context.Context, a *Appointment) error {
	conn := r.conn(ctx)
	dateKey := a.Date.Format("2006-01-02")

	_, err := conn.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text), hashtext($2))`,
		a.DoctorID, dateKey)
	if err != nil {
		return storageErr(err)
	}

	var taken bool
	err = conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND date = $2 AND status <> 'CANCELLED'
			  AND start_minute < $4 AND end_minute > $3
		)`,
		a.DoctorID, a.Date, a.StartMinute, a.EndMinute).Scan(&taken)
	if err != nil {
		return storageErr(err)
	}
	if taken {
		return fmt.Errorf("%w: doctor %s on %s %s-%s", ErrSlotUnavailable,
			a.DoctorID, dateKey,
			availability.FormatClock(a.StartMinute), availability.FormatClock(a.EndMinute))
	}

	a.ID = uuid.New()
	err = conn.QueryRow(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, date, start_minute, end_minute, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.StartMinute, a.EndMinute, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return fmt.Errorf("%w: doctor %s on %s %s-%s", ErrSlotUnavailable,
				a.DoctorID, dateKey,
				availability.FormatClock(a.StartMinute), availability.FormatClock(a.EndMinute))
		}
		return storageErr(err)
	}
	return nil
}

func (r *apptRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target Status) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment SET status=$3, updated_at=NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+apptCols, id, expected, target))
	if errors.Is(err, ErrNotFound) {
		// Zero rows: either the appointment is gone or its status moved
		// under us. Re-read to tell the two apart.
		current, readErr := r.GetByID(ctx, id)
		if readErr != nil {
			return nil, readErr
		}
		return nil, fmt.Errorf("%w: status is %s, expected %s",
			ErrConcurrentModification, current.Status, expected)
	}
	return a, err
}

func (r *apptRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *apptRepoPG) ListByDoctorDateRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, start_minute ASC`, doctorID, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *apptRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["doctor"]; ok {
		query += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient"]; ok {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND date >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND date >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND date <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND date <= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, storageErr(err)
	}

	query += fmt.Sprintf(` ORDER BY date ASC, start_minute ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	defer rows.Close()
	items, err := collectAppts(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectAppts(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.StartMinute,
			&a.EndMinute, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, storageErr(err)
		}
		items = append(items, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
