package postgres

import (
	"context"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Documents are stored whole in a JSONB column keyed by a UUID.
const schema = `
CREATE TABLE IF NOT EXISTS services (
	id         uuid PRIMARY KEY,
	doc        jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS bookings (
	id         uuid PRIMARY KEY,
	doc        jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bookings_email_idx ON bookings ((doc->>'email'));
`

type Store struct {
	pool     *pgxpool.Pool
	services *ServiceRepo
	bookings *BookingRepo
}

var _ repo.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{
		pool:     pool,
		services: NewServiceRepo(pool, timeout),
		bookings: NewBookingRepo(pool, timeout),
	}
}

func (s *Store) Services() repo.ServiceRepo { return s.services }
func (s *Store) Bookings() repo.BookingRepo { return s.bookings }

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, "postgres ping")
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return u, nil
}
