package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser     = "user"
	RoleBusiness = "business"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	City         string             `bson:"city" json:"city"`
	Age          int                `bson:"age" json:"age"`
	Role         string             `bson:"role" json:"role"` // "user" or "business"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
