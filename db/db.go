package db

import (
	"context"
	"errors"
	"fmt"

	"ktvadmin/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CustomersCollection   = "customers"
	RoomsCollection       = "rooms"
	BookingsCollection    = "bookings"
	ProductsCollection    = "products"
	OrdersCollection      = "orders"
	MembershipsCollection = "memberships"
)

// Store holds the shared client and one handle per collection.
type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Customers   *mongo.Collection
	Rooms       *mongo.Collection
	Bookings    *mongo.Collection
	Products    *mongo.Collection
	Orders      *mongo.Collection
	Memberships *mongo.Collection
}

// Connect opens the pooled client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxIdleTime).
		SetServerSelectionTimeout(cfg.SelectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewStore(client, cfg.Database), nil
}

// NewStore binds collection handles on an existing client.
func NewStore(client *mongo.Client, database string) *Store {
	d := client.Database(database)
	return &Store{
		Client:      client,
		Database:    d,
		Customers:   d.Collection(CustomersCollection),
		Rooms:       d.Collection(RoomsCollection),
		Bookings:    d.Collection(BookingsCollection),
		Products:    d.Collection(ProductsCollection),
		Orders:      d.Collection(OrdersCollection),
		Memberships: d.Collection(MembershipsCollection),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates lookup indexes on the business ids. They are not
// unique, so concurrent creates may still share an id.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll  *mongo.Collection
		field string
	}{
		{s.Customers, "customerId"},
		{s.Rooms, "roomId"},
		{s.Bookings, "bookingId"},
		{s.Bookings, "bookingAt"},
		{s.Products, "productId"},
		{s.Orders, "orderId"},
		{s.Orders, "orderDate"},
		{s.Memberships, "membershipId"},
	}
	for _, spec := range specs {
		model := mongo.IndexModel{Keys: bson.D{{Key: spec.field, Value: 1}}}
		if _, err := spec.coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s.%s: %w", spec.coll.Name(), spec.field, err)
		}
	}
	return nil
}

// LastID returns the greatest `field` value starting with prefix, or "" when
// the collection holds none. Ordering is lexicographic.
func LastID(ctx context.Context, coll *mongo.Collection, field, prefix string) (string, error) {
	filter := bson.M{field: bson.M{"$regex": "^" + prefix}}
	opts := options.FindOne().
		SetSort(bson.D{{Key: field, Value: -1}}).
		SetProjection(bson.M{field: 1})

	var doc bson.M
	err := coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	id, _ := doc[field].(string)
	return id, nil
}
