package memberships

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
	return db.LastID(ctx, s.coll, "membershipId", idPrefix)
}

func (s *MongoStore) Insert(ctx context.Context, m *models.Membership) error {
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, membershipID string) (*models.Membership, error) {
	var m models.Membership
	err := s.coll.FindOne(ctx, bson.M{"membershipId": membershipID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Membership")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: -1}})
	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.Membership{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func filterDoc(f Filter) bson.M {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	if f.ActiveSince != nil {
		filter["expiryDate"] = bson.M{"$gte": *f.ActiveSince}
	}
	return filter
}
