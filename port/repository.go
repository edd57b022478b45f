package port

import (
	"context"

	"go-ordering/apperrors"
	"go-ordering/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrOrderNotOpen is returned when a line item is added to an order that
// left the open status in the meantime.
var ErrOrderNotOpen = apperrors.Conflict("order is no longer open")

type OrderRepository interface {
	// FindByUser returns every order of the user, newest first
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)

	// FindByBusinesses returns the orders of the given businesses whose status is one of statuses
	FindByBusinesses(ctx context.Context, businessIDs []primitive.ObjectID, statuses []models.OrderStatus) ([]models.Order, error)

	FindByID(ctx context.Context, orderID primitive.ObjectID) (models.Order, error)

	// UpsertOpenOrder atomically returns the open order of the (user, business)
	// pair, creating an empty one if none exists
	UpsertOpenOrder(ctx context.Context, userID, businessID primitive.ObjectID) (models.Order, error)

	// AddLineItem increments the amount of productID in an open order, or
	// appends it with amount 1. Returns ErrOrderNotOpen if the order is not open.
	AddLineItem(ctx context.Context, orderID, productID primitive.ObjectID) error

	// UpdateStatus sets the status of an order. With a non-empty from, the
	// update only applies when the current status is one of from; changed
	// reports whether it did.
	UpdateStatus(ctx context.Context, orderID primitive.ObjectID, to models.OrderStatus, from ...models.OrderStatus) (changed bool, err error)
}

type UserRepository interface {
	Create(ctx context.Context, user models.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (models.User, error)
	// Delete removes the user; deleting a missing user is not an error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

type BusinessRepository interface {
	Create(ctx context.Context, business models.Business) (primitive.ObjectID, error)
	List(ctx context.Context) ([]models.Business, error)
	FindByID(ctx context.Context, businessID primitive.ObjectID) (models.Business, error)
	FindByIDs(ctx context.Context, businessIDs []primitive.ObjectID) ([]models.Business, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Business, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (primitive.ObjectID, error)
	FindByID(ctx context.Context, productID primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Product, error)
	FindByBusiness(ctx context.Context, businessID primitive.ObjectID) ([]models.Product, error)
}
