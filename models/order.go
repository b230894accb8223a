package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending   = "Pending"
	OrderPreparing = "Preparing"
	OrderReady     = "Ready"
	OrderDelivered = "Delivered"
	OrderCancelled = "Cancelled"
)

type OrderDetail struct {
	ProductID   string  `json:"productId" bson:"productId" validate:"required"`
	ProductName string  `json:"productName" bson:"productName"`
	Quantity    int     `json:"quantity" bson:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" bson:"unitPrice" validate:"gte=0"`
	Subtotal    float64 `json:"subtotal" bson:"subtotal"`
}

type Order struct {
	ID            primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	OrderID       string             `json:"orderId" bson:"orderId"`
	CustomerID    string             `json:"customerId" bson:"customerId"`
	BookingID     *string            `json:"bookingId" bson:"bookingId"`
	OrderDate     time.Time          `json:"orderDate" bson:"orderDate"`
	Status        string             `json:"status" bson:"status"`
	OrderDetails  []OrderDetail      `json:"orderDetails" bson:"orderDetails"`
	Subtotal      float64            `json:"subtotal" bson:"subtotal"`
	Discount      float64            `json:"discount" bson:"discount"`
	TotalAmount   float64            `json:"totalAmount" bson:"totalAmount"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
