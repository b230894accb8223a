package receipts

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktvadmin/models"
)

func TestPayloadSigning(t *testing.T) {
	assert.Equal(t, "ORDER|O001", Renderer{}.Payload("ORDER", "O001"))

	signed := Renderer{Secret: []byte("k")}.Payload("ORDER", "O001")
	parts := strings.Split(signed, "|")
	require.Len(t, parts, 3)
	assert.NotEmpty(t, parts[2])
	assert.Equal(t, signed, Renderer{Secret: []byte("k")}.Payload("ORDER", "O001"))
	assert.NotEqual(t, signed, Renderer{Secret: []byte("other")}.Payload("ORDER", "O001"))
}

func TestBookingPassIsPDF(t *testing.T) {
	start := time.Date(2025, 3, 1, 18, 0, 0, 0, time.Local)
	b := &models.Booking{
		BookingID: "B007",
		RoomID:    "R002",
		TimeSlot:  models.TimeSlot{StartAt: start, EndAt: start.Add(2 * time.Hour)},
		Duration:  2,
		Status:    models.BookingConfirmed,
	}
	body, err := Renderer{}.BookingPass(b, &models.Room{RoomID: "R002", Name: "Aurora", Type: models.RoomVIP})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestOrderReceiptIsPDF(t *testing.T) {
	bookingID := "B001"
	o := &models.Order{
		OrderID:   "O010",
		BookingID: &bookingID,
		OrderDetails: []models.OrderDetail{
			{ProductID: "D001", ProductName: "Cola", Quantity: 2, UnitPrice: 25, Subtotal: 50},
			{ProductID: "F003", Quantity: 1, UnitPrice: 50, Subtotal: 50},
		},
		Subtotal:    100,
		Discount:    10,
		TotalAmount: 90,
	}
	body, err := Renderer{Secret: []byte("s")}.OrderReceipt(o)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	rec := httptest.NewRecorder()
	WritePDF(rec, "receipt-O010.pdf", body)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-O010.pdf")
}
