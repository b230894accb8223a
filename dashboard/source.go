package dashboard

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ktvadmin/db"
	"ktvadmin/models"
)

// Source is the read side the aggregator runs against.
type Source interface {
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
	Revenue(ctx context.Context, from, to time.Time) (float64, error)
	PopularProducts(ctx context.Context, limit int64) ([]models.PopularProduct, error)
	RoomUtilization(ctx context.Context, from, to time.Time) ([]models.RoomUtilization, error)
	RecentBookings(ctx context.Context, limit int64) ([]models.RecentBooking, error)
	FindAll(ctx context.Context, collection string, out interface{}) error
}

type MongoSource struct {
	store *db.Store
}

func NewMongoSource(store *db.Store) *MongoSource {
	return &MongoSource{store: store}
}

func (s *MongoSource) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.store.Database.Collection(collection).CountDocuments(ctx, filter)
}

func (s *MongoSource) Revenue(ctx context.Context, from, to time.Time) (float64, error) {
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := aggregate(ctx, s.store.Orders, revenuePipeline(from, to), &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *MongoSource) PopularProducts(ctx context.Context, limit int64) ([]models.PopularProduct, error) {
	out := []models.PopularProduct{}
	err := aggregate(ctx, s.store.Orders, popularProductsPipeline(limit), &out)
	return out, err
}

func (s *MongoSource) RoomUtilization(ctx context.Context, from, to time.Time) ([]models.RoomUtilization, error) {
	out := []models.RoomUtilization{}
	err := aggregate(ctx, s.store.Bookings, roomUtilizationPipeline(from, to), &out)
	return out, err
}

func (s *MongoSource) RecentBookings(ctx context.Context, limit int64) ([]models.RecentBooking, error) {
	out := []models.RecentBooking{}
	err := aggregate(ctx, s.store.Bookings, recentBookingsPipeline(limit), &out)
	return out, err
}

func (s *MongoSource) FindAll(ctx context.Context, collection string, out interface{}) error {
	cursor, err := s.store.Database.Collection(collection).Find(ctx, bson.M{}, options.Find())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func dayMatch(field string, from, to time.Time) bson.D {
	return bson.D{{Key: "$match", Value: bson.M{field: bson.M{"$gte": from, "$lt": to}}}}
}

func revenuePipeline(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		dayMatch("orderDate", from, to),
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}
}

func popularProductsPipeline(limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$orderDetails"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$orderDetails.productId",
			"productName":   bson.M{"$first": "$orderDetails.productName"},
			"totalQuantity": bson.M{"$sum": "$orderDetails.quantity"},
			"totalRevenue":  bson.M{"$sum": "$orderDetails.subtotal"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalQuantity", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func roomUtilizationPipeline(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		dayMatch("bookingAt", from, to),
		{{Key: "$group", Value: bson.M{
			"_id":          "$roomId",
			"bookingCount": bson.M{"$sum": 1},
			"totalHours":   bson.M{"$sum": "$duration"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalHours", Value: -1}}}},
	}
}

// Bookings whose customer or room was deleted are kept with empty names.
// startAt and endAt are lifted out of timeSlot for the dashboard table.
func recentBookingsPipeline(limit int64) mongo.Pipeline {
	lookup := func(from, field string) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.M{
			"from":         from,
			"localField":   field,
			"foreignField": field,
			"as":           from,
		}}}
	}
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "bookingAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		lookup(db.CustomersCollection, "customerId"),
		lookup(db.RoomsCollection, "roomId"),
		{{Key: "$addFields", Value: bson.M{
			"customerName": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$customers.name", 0}}, ""}},
			"roomName":     bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$rooms.name", 0}}, ""}},
			"startAt":      "$timeSlot.startAt",
			"endAt":        "$timeSlot.endAt",
		}}},
		{{Key: "$project", Value: bson.M{"customers": 0, "rooms": 0}}},
	}
}
