package booking

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
	return db.LastID(ctx, s.coll, "bookingId", idPrefix)
}

func (s *MongoStore) Insert(ctx context.Context, b *models.Booking) error {
	res, err := s.coll.InsertOne(ctx, b)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := s.coll.FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Booking")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bookingId", Value: 1}})
	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Replace overwrites the whole document; _id is left to the server.
func (s *MongoStore) Replace(ctx context.Context, b *models.Booking) error {
	doc := *b
	doc.ID = primitive.NilObjectID
	res, err := s.coll.ReplaceOne(ctx, bson.M{"bookingId": b.BookingID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.NotFound("Booking")
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, bookingID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"bookingId": bookingID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("Booking")
	}
	return nil
}

func filterDoc(f Filter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	if f.RoomID != "" {
		filter["roomId"] = f.RoomID
	}
	if f.From != nil && f.To != nil {
		filter["bookingAt"] = bson.M{"$gte": *f.From, "$lte": *f.To}
	}
	return filter
}
