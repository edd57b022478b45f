package repository

import (
	"context"
	"fmt"

	"go-ordering/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection      = "users"
	businessesCollection = "businesses"
	productsCollection   = "products"
	ordersCollection     = "orders"
)

// ConnectDB connects to MongoDB and verifies the connection with a ping
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The partial
// unique index on orders keeps at most one open order per (user, business).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_email"),
			},
		},
		businessesCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "business", Value: 1}}},
		},
		ordersCollection: {
			{
				Keys: bson.D{{Key: "user", Value: 1}, {Key: "business", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_open_order").
					SetPartialFilterExpression(bson.M{"status": models.OrderStatusOpen}),
			},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "business", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("%s.CreateMany: %w", name, err)
		}
	}

	return nil
}
