package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"ktvadmin/models"
	"ktvadmin/utils"
)

func TestFilterDoc(t *testing.T) {
	assert.Equal(t, bson.M{}, filterDoc(Filter{}))

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Nanosecond)
	got := filterDoc(Filter{Status: "Active", CustomerID: "C001", RoomID: "R002", From: &from, To: &to})
	assert.Equal(t, bson.M{
		"status":     "Active",
		"customerId": "C001",
		"roomId":     "R002",
		"bookingAt":  bson.M{"$gte": from, "$lte": to},
	}, got)
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.bookings", mtest.FirstBatch, bson.D{
			{Key: "bookingId", Value: "B003"},
			{Key: "roomId", Value: "R001"},
			{Key: "status", Value: "Active"},
			{Key: "duration", Value: 2.0},
		}))
		b, err := NewMongoStore(mt.Coll).FindByID(context.Background(), "B003")
		require.NoError(mt, err)
		assert.Equal(mt, "B003", b.BookingID)
		assert.Equal(mt, models.BookingActive, b.Status)
		assert.Equal(mt, 2.0, b.Duration)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.bookings", mtest.FirstBatch))
		_, err := NewMongoStore(mt.Coll).FindByID(context.Background(), "B404")
		assert.True(mt, utils.IsNotFound(err))
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ktv.bookings", mtest.FirstBatch,
			bson.D{{Key: "bookingId", Value: "B001"}},
			bson.D{{Key: "bookingId", Value: "B002"}},
		))
		list, err := NewMongoStore(mt.Coll).List(context.Background(), Filter{Status: "Pending"})
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "B002", list[1].BookingID)
	})

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		b := &models.Booking{BookingID: "B010"}
		require.NoError(mt, NewMongoStore(mt.Coll).Insert(context.Background(), b))
		assert.False(mt, b.ID.IsZero())
	})

	mt.Run("replace unmatched", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})
		err := NewMongoStore(mt.Coll).Replace(context.Background(), &models.Booking{BookingID: "B404"})
		assert.True(mt, utils.IsNotFound(err))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})
		assert.NoError(mt, NewMongoStore(mt.Coll).Delete(context.Background(), "B001"))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})
		err := NewMongoStore(mt.Coll).Delete(context.Background(), "B404")
		assert.True(mt, utils.IsNotFound(err))
	})
}
