package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryFood  = "Food"
	CategoryDrink = "Drink"
	CategorySnack = "Snack"
)

type Product struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ProductID   string             `json:"productId" bson:"productId"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	Description string             `json:"description" bson:"description"`
	Available   bool               `json:"available" bson:"available"`
	Stock       int                `json:"stock" bson:"stock"`
	Image       string             `json:"image" bson:"image"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductPrefix picks the id prefix for a category: F food, D drink, S otherwise.
func ProductPrefix(category string) string {
	switch category {
	case CategoryFood:
		return "F"
	case CategoryDrink:
		return "D"
	}
	return "S"
}
