package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingActive    BookingStatus = "Active"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

// Occupying reports whether a booking in this status holds its room.
func (s BookingStatus) Occupying() bool {
	return s == BookingActive || s == BookingConfirmed
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type TimeSlot struct {
	StartAt time.Time `json:"startAt" bson:"startAt"`
	EndAt   time.Time `json:"endAt" bson:"endAt"`
}

// Hours is the slot length in fractional hours.
func (ts TimeSlot) Hours() float64 {
	return ts.EndAt.Sub(ts.StartAt).Hours()
}

type Booking struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	BookingID  string             `json:"bookingId" bson:"bookingId"`
	CustomerID string             `json:"customerId" bson:"customerId"`
	RoomID     string             `json:"roomId" bson:"roomId"`
	BookingAt  time.Time          `json:"bookingAt" bson:"bookingAt"`
	TimeSlot   TimeSlot           `json:"timeSlot" bson:"timeSlot"`
	Duration   float64            `json:"duration" bson:"duration"`
	TotalPrice float64            `json:"totalPrice" bson:"totalPrice"`
	Status     BookingStatus      `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RecentBooking is a booking joined with its customer and room for the dashboard.
type RecentBooking struct {
	Booking      `bson:",inline"`
	CustomerName string    `json:"customerName" bson:"customerName"`
	RoomName     string    `json:"roomName" bson:"roomName"`
	StartAt      time.Time `json:"startAt" bson:"startAt"`
	EndAt        time.Time `json:"endAt" bson:"endAt"`
}
