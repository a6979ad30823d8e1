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

type serviceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name,omitempty"`
	Title       string             `bson:"title,omitempty"`
	Description string             `bson:"description,omitempty"`
	Img         string             `bson:"img,omitempty"`
	Extra       bson.M             `bson:",inline"`
}

func toServiceDoc(s *domain.Service) serviceDoc {
	return serviceDoc{
		Name:        s.Name,
		Title:       s.Title,
		Description: s.Description,
		Img:         s.Img,
		Extra:       s.Extra,
	}
}

func (d serviceDoc) toDomain() domain.Service {
	return domain.Service{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Img:         d.Img,
		Extra:       normalize(d.Extra),
	}
}

type ServiceRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewServiceRepo(coll *mongo.Collection, timeout time.Duration) *ServiceRepo {
	return &ServiceRepo{coll: coll, timeout: timeout}
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "services.find")
	}
	var docs []serviceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "services.find: decode")
	}

	out := make([]domain.Service, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ServiceRepo) Get(ctx context.Context, id string) (*domain.Service, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "services.findOne %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d serviceDoc
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "services.findOne")
	}
	s := d.toDomain()
	return &s, nil
}

func (r *ServiceRepo) Insert(ctx context.Context, s *domain.Service) (*domain.InsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toServiceDoc(s))
	if err != nil {
		return nil, errors.Wrap(err, "services.insertOne")
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: insertedID(res)}, nil
}
