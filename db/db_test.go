package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLastID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns greatest id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.bookings", mtest.FirstBatch,
			bson.D{{Key: "bookingId", Value: "B021"}}))

		id, err := LastID(context.Background(), mt.Coll, "bookingId", "B")
		require.NoError(mt, err)
		assert.Equal(mt, "B021", id)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.bookings", mtest.FirstBatch))

		id, err := LastID(context.Background(), mt.Coll, "bookingId", "B")
		require.NoError(mt, err)
		assert.Empty(mt, id)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := LastID(context.Background(), mt.Coll, "bookingId", "B")
		assert.Error(mt, err)
	})
}

func TestNewStoreBindsCollections(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("names", func(mt *mtest.T) {
		s := NewStore(mt.Client, "KTV-Family")
		assert.Equal(mt, "KTV-Family", s.Database.Name())
		assert.Equal(mt, CustomersCollection, s.Customers.Name())
		assert.Equal(mt, RoomsCollection, s.Rooms.Name())
		assert.Equal(mt, BookingsCollection, s.Bookings.Name())
		assert.Equal(mt, ProductsCollection, s.Products.Name())
		assert.Equal(mt, OrdersCollection, s.Orders.Name())
		assert.Equal(mt, MembershipsCollection, s.Memberships.Name())
	})
}
