package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ktvadmin/db"
	"ktvadmin/models"
	"ktvadmin/utils"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) LastID(ctx context.Context) (string, error) {
	return db.LastID(ctx, s.coll, "orderId", idPrefix)
}

func (s *MongoStore) Insert(ctx context.Context, o *models.Order) error {
	res, err := s.coll.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	err := s.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Order")
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.Order{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func filterDoc(f Filter) bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.BookingID != "" {
		filter["bookingId"] = f.BookingID
	}
	if f.From != nil && f.To != nil {
		filter["orderDate"] = bson.M{"$gte": *f.From, "$lte": *f.To}
	}
	return filter
}
