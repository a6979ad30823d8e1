package mongodb

import (
	"context"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	CustomerName string             `bson:"customerName,omitempty"`
	ServiceID    string             `bson:"service_id,omitempty"`
	Service      string             `bson:"service,omitempty"`
	Date         string             `bson:"date,omitempty"`
	Img          string             `bson:"img,omitempty"`
	Status       string             `bson:"status,omitempty"`
	Extra        bson.M             `bson:",inline"`
}

func toBookingDoc(b *domain.Booking) bookingDoc {
	return bookingDoc{
		Email:        b.Email,
		CustomerName: b.CustomerName,
		ServiceID:    b.ServiceID,
		Service:      b.Service,
		Date:         b.Date,
		Img:          b.Img,
		Status:       b.Status,
		Extra:        b.Extra,
	}
}

func (d bookingDoc) toDomain() domain.Booking {
	return domain.Booking{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		CustomerName: d.CustomerName,
		ServiceID:    d.ServiceID,
		Service:      d.Service,
		Date:         d.Date,
		Img:          d.Img,
		Status:       d.Status,
		Extra:        normalize(d.Extra),
	}
}

type BookingRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewBookingRepo(coll *mongo.Collection, timeout time.Duration) *BookingRepo {
	return &BookingRepo{coll: coll, timeout: timeout}
}

func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) (*domain.InsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toBookingDoc(b))
	if err != nil {
		return nil, errors.Wrap(err, "bookings.insertOne")
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: insertedID(res)}, nil
}

func (r *BookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	q := bson.D{}
	if filter.Email != "" {
		q = bson.D{{Key: "email", Value: filter.Email}}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.find")
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "bookings.find: decode")
	}

	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *BookingRepo) DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "bookings.deleteOne %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, errors.Wrap(err, "bookings.deleteOne")
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (r *BookingRepo) DeleteAll(ctx context.Context) (*domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "bookings.deleteMany")
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// UpdateStatus sets only the status field; concurrent updates are last-write-wins.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status string) (*domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "bookings.updateOne %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return nil, errors.Wrap(err, "bookings.updateOne")
	}

	out := &domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if uid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		hex := uid.Hex()
		out.UpsertedID = &hex
	}
	return out, nil
}
