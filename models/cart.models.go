package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product entry of an order
type LineItem struct {
	ItemID primitive.ObjectID `bson:"item" json:"item"`
	Amount int                `bson:"amount" json:"amount"`

	// Item is hydrated on read, never stored
	Item *Product `bson:"-" json:"item_detail,omitempty"`
}
