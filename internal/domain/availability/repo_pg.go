package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docbook/docbook/internal/platform/db"
)

type windowRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &windowRepoPG{pool: pool} }

func (r *windowRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.FromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const windowCols = `id, doctor_id, weekday, start_minute, end_minute, slot_minutes, created_at, updated_at`

func (r *windowRepoPG) scanWindow(row pgx.Row) (*Window, error) {
	var w Window
	err := row.Scan(&w.ID, &w.DoctorID, &w.Weekday, &w.StartMinute, &w.EndMinute,
		&w.SlotMinutes, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &w, nil
}

func (r *windowRepoPG) Create(ctx context.Context, w *Window) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_availability (id, doctor_id, weekday, start_minute, end_minute, slot_minutes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		w.ID, w.DoctorID, w.Weekday, w.StartMinute, w.EndMinute, w.SlotMinutes)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (r *windowRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Window, error) {
	return r.scanWindow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+windowCols+` FROM doctor_availability WHERE id = $1`, id))
}

func (r *windowRepoPG) Update(ctx context.Context, w *Window) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor_availability
		SET weekday=$2, start_minute=$3, end_minute=$4, slot_minutes=$5, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.Weekday, w.StartMinute, w.EndMinute, w.SlotMinutes)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *windowRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_availability WHERE id = $1`, id)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *windowRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+windowCols+` FROM doctor_availability
		WHERE doctor_id = $1
		ORDER BY weekday ASC, start_minute ASC`, doctorID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return collectWindows(rows)
}

func (r *windowRepoPG) ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*Window, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+windowCols+` FROM doctor_availability
		WHERE doctor_id = $1 AND weekday = $2
		ORDER BY start_minute ASC`, doctorID, weekday)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return collectWindows(rows)
}

func collectWindows(rows pgx.Rows) ([]*Window, error) {
	var items []*Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.DoctorID, &w.Weekday, &w.StartMinute, &w.EndMinute,
			&w.SlotMinutes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, storageErr(err)
		}
		items = append(items, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
