package customers

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
	return db.LastID(ctx, s.coll, "customerId", idPrefix)
}

func (s *MongoStore) Insert(ctx context.Context, c *models.Customer) error {
	res, err := s.coll.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, customerID string) (*models.Customer, error) {
	var c models.Customer
	err := s.coll.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Customer")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) List(ctx context.Context, q ListQuery) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: q.Sort, Value: q.Order}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cursor, err := s.coll.Find(ctx, searchFilter(q.Search), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *MongoStore) Update(ctx context.Context, customerID string, set bson.M) (*models.Customer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Customer
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"customerId": customerID}, bson.M{"$set": set}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Customer")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) Replace(ctx context.Context, c *models.Customer) error {
	doc := *c
	doc.ID = primitive.NilObjectID
	res, err := s.coll.ReplaceOne(ctx, bson.M{"customerId": c.CustomerID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.NotFound("Customer")
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, customerID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("Customer")
	}
	return nil
}

// SetMembership links a customer to a membership id.
func (s *MongoStore) SetMembership(ctx context.Context, customerID, membershipID string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"customerId": customerID}, bson.M{"$set": bson.M{"membershipId": membershipID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.NotFound("Customer")
	}
	return nil
}

func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := utils.ContainsPattern(search)
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
		bson.M{"phone": pattern},
	}}
}
