package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business is a restaurant or shop that owns products and receives orders
type Business struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	City        string             `bson:"city" json:"city"`
	OwnerID     primitive.ObjectID `bson:"owner" json:"owner"`
}
