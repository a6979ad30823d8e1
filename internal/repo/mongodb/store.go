package mongodb

import (
	"context"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/diagnosis/carshop-bookings/pkg/database"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	servicesCollection = "services"
	bookingsCollection = "bookings"
)

type Store struct {
	client   *mongo.Client
	services *ServiceRepo
	bookings *BookingRepo
}

var _ repo.Store = (*Store)(nil)

func NewStore(client *mongo.Client, dbName string, timeout time.Duration) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		services: NewServiceRepo(db.Collection(servicesCollection), timeout),
		bookings: NewBookingRepo(db.Collection(bookingsCollection), timeout),
	}
}

func (s *Store) Services() repo.ServiceRepo { return s.services }
func (s *Store) Bookings() repo.BookingRepo { return s.bookings }

func (s *Store) Ping(ctx context.Context) error {
	return database.PingMongo(ctx, s.client)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
