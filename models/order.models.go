package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusOpen:      {},
	OrderStatusPending:   {},
	OrderStatusDelivered: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

// Order is a user's order with a single business. While its status is open
// it acts as the user's shopping cart for that business.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	BusinessID primitive.ObjectID `bson:"business" json:"business"`
	Products   []LineItem         `bson:"products" json:"products"`
	Status     OrderStatus        `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`

	// Business is hydrated on read, never stored
	Business *Business `bson:"-" json:"business_detail,omitempty"`
}

func (o Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// OrderEvent is published when an order changes status
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    primitive.ObjectID `json:"order_id"`
	UserID     primitive.ObjectID `json:"user_id"`
	BusinessID primitive.ObjectID `json:"business_id"`
	Status     OrderStatus        `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderDelivered = "order.delivered"
)
