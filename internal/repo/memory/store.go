// Package memory is a process-local store for development and tests. It
// mimics the document store's identifiers and acknowledgements.
package memory

import (
	"context"
	"sync"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu       sync.RWMutex
	services []domain.Service
	bookings []domain.Booking

	// Err, when set, is returned by every operation.
	Err error
}

var _ repo.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Services() repo.ServiceRepo { return serviceRepo{s} }
func (s *Store) Bookings() repo.BookingRepo { return bookingRepo{s} }

func (s *Store) Ping(context.Context) error  { return s.Err }
func (s *Store) Close(context.Context) error { return nil }

func newID() string {
	return primitive.NewObjectID().Hex()
}

func checkID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}

type serviceRepo struct{ s *Store }

func (r serviceRepo) List(context.Context) ([]domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return append([]domain.Service{}, r.s.services...), nil
}

func (r serviceRepo) Get(_ context.Context, id string) (*domain.Service, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, svc := range r.s.services {
		if svc.ID == id {
			cp := svc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r serviceRepo) Insert(_ context.Context, svc *domain.Service) (*domain.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	cp := *svc
	cp.ID = newID()
	r.s.services = append(r.s.services, cp)
	return &domain.InsertResult{Acknowledged: true, InsertedID: cp.ID}, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Insert(_ context.Context, b *domain.Booking) (*domain.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	cp := *b
	cp.ID = newID()
	r.s.bookings = append(r.s.bookings, cp)
	return &domain.InsertResult{Acknowledged: true, InsertedID: cp.ID}, nil
}

func (r bookingRepo) List(_ context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []domain.Booking{}
	for _, b := range r.s.bookings {
		if filter.Email == "" || b.Email == filter.Email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r bookingRepo) DeleteByID(_ context.Context, id string) (*domain.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i, b := range r.s.bookings {
		if b.ID == id {
			r.s.bookings = append(r.s.bookings[:i], r.s.bookings[i+1:]...)
			return &domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return &domain.DeleteResult{Acknowledged: true}, nil
}

func (r bookingRepo) DeleteAll(context.Context) (*domain.DeleteResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	n := int64(len(r.s.bookings))
	r.s.bookings = nil
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (r bookingRepo) UpdateStatus(_ context.Context, id string, status string) (*domain.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i := range r.s.bookings {
		if r.s.bookings[i].ID != id {
			continue
		}
		res := &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
		if r.s.bookings[i].Status != status {
			r.s.bookings[i].Status = status
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return &domain.UpdateResult{Acknowledged: true}, nil
}
