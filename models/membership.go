package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

// TierDiscount is the percent off each membership tier earns.
var TierDiscount = map[string]float64{
	TierBronze:   5,
	TierSilver:   10,
	TierGold:     20,
	TierPlatinum: 30,
}

type Membership struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	MembershipID string             `json:"membershipId" bson:"membershipId"`
	CustomerID   string             `json:"customerId" bson:"customerId"`
	Type         string             `json:"type" bson:"type"`
	Discount     float64            `json:"discount" bson:"discount"`
	StartDate    time.Time          `json:"startDate" bson:"startDate"`
	ExpiryDate   time.Time          `json:"expiryDate" bson:"expiryDate"`
	Benefits     []string           `json:"benefits" bson:"benefits"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Rate returns the stored discount, falling back to the tier table when unset.
func (m Membership) Rate() float64 {
	if m.Discount > 0 {
		return m.Discount
	}
	return TierDiscount[m.Type]
}
