package rooms

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
	return db.LastID(ctx, s.coll, "roomId", idPrefix)
}

func (s *MongoStore) Insert(ctx context.Context, room *models.Room) error {
	res, err := s.coll.InsertOne(ctx, room)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.coll.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Room")
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "roomId", Value: 1}})
	cursor, err := s.coll.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rooms := []models.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *MongoStore) Update(ctx context.Context, roomID string, set bson.M) (*models.Room, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var room models.Room
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"roomId": roomID}, bson.M{"$set": set}, opts).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NotFound("Room")
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SetAvailable flips the availability flag without touching updatedAt.
func (s *MongoStore) SetAvailable(ctx context.Context, roomID string, available bool) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"roomId": roomID}, bson.M{"$set": bson.M{"available": available}})
	return err
}

func (s *MongoStore) Delete(ctx context.Context, roomID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"roomId": roomID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("Room")
	}
	return nil
}

func filterDoc(f Filter) bson.M {
	filter := bson.M{}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.MinCapacity > 0 {
		filter["capacity"] = bson.M{"$gte": f.MinCapacity}
	}
	return filter
}
