package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoomStandard = "Standard"
	RoomVIP      = "VIP"
	RoomFamily   = "Family"
)

type Room struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RoomID       string             `json:"roomId" bson:"roomId"`
	Name         string             `json:"name" bson:"name"`
	Type         string             `json:"type" bson:"type"`
	PricePerHour float64            `json:"pricePerHour" bson:"pricePerHour"`
	Description  string             `json:"description" bson:"description"`
	Available    bool               `json:"available" bson:"available"`
	Capacity     int                `json:"capacity" bson:"capacity"`
	Equipment    []string           `json:"equipment" bson:"equipment"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
