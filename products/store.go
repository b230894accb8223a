package products

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

func (s *MongoStore) LastID(ctx context.Context, prefix string) (string, error) {
	return db.LastID(ctx, s.coll, "productId", prefix)
}

func (s *MongoStore) Insert(ctx context.Context, p *models.Product) error {
	res, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"productId": productID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.Product{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) Update(ctx context.Context, productID string, set bson.M) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"productId": productID}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) Delete(ctx context.Context, productID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("Product")
	}
	return nil
}

// AdjustStock adds delta to the product's stock. Stock may go negative.
func (s *MongoStore) AdjustStock(ctx context.Context, productID string, delta int) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"productId": productID}, bson.M{"$inc": bson.M{"stock": delta}})
	return err
}

func filterDoc(f Filter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	if f.Search != "" {
		pattern := utils.ContainsPattern(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}
