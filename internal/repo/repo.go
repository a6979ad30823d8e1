// Package repo declares the document-store operations the HTTP layer relies on.
// Implementations live in the mongo and postgres subpackages.
package repo

import (
	"context"

	"github.com/diagnosis/carshop-bookings/internal/domain"
)

type ServiceRepo interface {
	List(ctx context.Context) ([]domain.Service, error)
	// Get returns nil, nil when no service has the id.
	Get(ctx context.Context, id string) (*domain.Service, error)
	Insert(ctx context.Context, s *domain.Service) (*domain.InsertResult, error)
}

type BookingRepo interface {
	Insert(ctx context.Context, b *domain.Booking) (*domain.InsertResult, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	// DeleteByID reports zero deleted, not an error, when the id is unknown.
	DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error)
	DeleteAll(ctx context.Context) (*domain.DeleteResult, error)
	UpdateStatus(ctx context.Context, id string, status string) (*domain.UpdateResult, error)
}

// Store bundles both collections behind one connection lifecycle.
type Store interface {
	Services() ServiceRepo
	Bookings() BookingRepo
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
