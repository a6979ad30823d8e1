package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type BookingRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewBookingRepo(pool *pgxpool.Pool, timeout time.Duration) *BookingRepo {
	return &BookingRepo{pool: pool, timeout: timeout}
}

func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) (*domain.InsertResult, error) {
	doc := *b
	doc.ID = ""
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.insertOne: encode")
	}

	const q = `INSERT INTO bookings (id, doc) VALUES ($1, $2)`
	id := uuid.New()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, q, id, raw); err != nil {
		return nil, errors.Wrap(err, "bookings.insertOne")
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id.String()}, nil
}

func (r *BookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	q := `SELECT id::text, doc FROM bookings`
	var args []any
	if filter.Email != "" {
		q += ` WHERE doc->>'email' = $1`
		args = append(args, filter.Email)
	}
	q += ` ORDER BY created_at`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.find")
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, errors.Wrap(err, "bookings.find: scan")
		}
		var b domain.Booking
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, errors.Wrap(err, "bookings.find: decode document")
		}
		b.ID = id
		out = append(out, b)
	}
	return out, errors.Wrap(rows.Err(), "bookings.find: rows")
}

func (r *BookingRepo) DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "bookings.deleteOne %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, u)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.deleteOne")
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: ct.RowsAffected()}, nil
}

func (r *BookingRepo) DeleteAll(ctx context.Context) (*domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `DELETE FROM bookings`)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.deleteMany")
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: ct.RowsAffected()}, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status string) (*domain.UpdateResult, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "bookings.updateOne %q", id)
	}

	// matched counts the row; modified only when the status actually changes.
	const q = `
WITH target AS (SELECT id, doc->>'status' AS old FROM bookings WHERE id=$1),
upd AS (
	UPDATE bookings b SET doc = jsonb_set(b.doc, '{status}', to_jsonb($2::text))
	FROM target t WHERE b.id = t.id AND t.old IS DISTINCT FROM $2::text
	RETURNING b.id
)
SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM upd)`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var matched, modified int64
	if err := r.pool.QueryRow(ctx, q, u, status).Scan(&matched, &modified); err != nil {
		return nil, errors.Wrap(err, "bookings.updateOne")
	}
	return &domain.UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}, nil
}
