package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type ServiceRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewServiceRepo(pool *pgxpool.Pool, timeout time.Duration) *ServiceRepo {
	return &ServiceRepo{pool: pool, timeout: timeout}
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	const q = `SELECT id::text, doc FROM services ORDER BY created_at`
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "services.find")
	}
	defer rows.Close()

	out := []domain.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, errors.Wrap(rows.Err(), "services.find: rows")
}

func (r *ServiceRepo) Get(ctx context.Context, id string) (*domain.Service, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "services.findOne %q", id)
	}

	const q = `SELECT id::text, doc FROM services WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, u))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *ServiceRepo) Insert(ctx context.Context, s *domain.Service) (*domain.InsertResult, error) {
	doc := *s
	doc.ID = ""
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "services.insertOne: encode")
	}

	const q = `INSERT INTO services (id, doc) VALUES ($1, $2)`
	id := uuid.New()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, q, id, raw); err != nil {
		return nil, errors.Wrap(err, "services.insertOne")
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id.String()}, nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "services: scan")
	}
	var s domain.Service
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "services: decode document")
	}
	s.ID = id
	return &s, nil
}
