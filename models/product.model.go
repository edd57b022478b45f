package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is an item sold by a business
type Product struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Price      float64            `bson:"price" json:"price"`
	BusinessID primitive.ObjectID `bson:"business" json:"business"`

	// Business is hydrated on read, never stored
	Business *Business `bson:"-" json:"business_detail,omitempty"`
}
