package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// upsertAttempts bounds retries when two upserts race on the open order index
const upsertAttempts = 3

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrder(db *mongo.Database) port.OrderRepository {
	return &orderRepository{
		collection: db.Collection(ordersCollection),
	}
}

func (r *orderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("orders.Find: %w", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) FindByBusinesses(ctx context.Context, businessIDs []primitive.ObjectID, statuses []models.OrderStatus) ([]models.Order, error) {
	if len(businessIDs) == 0 {
		return []models.Order{}, nil
	}

	filter := bson.M{
		"business": bson.M{"$in": businessIDs},
		"status":   bson.M{"$in": statuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("orders.Find: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, fmt.Errorf("cursor.Decode: %w", err)
		}
		orders = append(orders, order)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor.Err: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	var order models.Order

	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return order, apperrors.WrapNotFound(err, "order %s not found", orderID.Hex())
	}
	if err != nil {
		return order, fmt.Errorf("orders.FindOne: %w", err)
	}

	return order, nil
}

func (r *orderRepository) UpsertOpenOrder(ctx context.Context, userID, businessID primitive.ObjectID) (models.Order, error) {
	var order models.Order

	// equality fields of the filter are copied into the inserted document
	filter := bson.M{
		"user":     userID,
		"business": businessID,
		"status":   models.OrderStatusOpen,
	}
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"products":   bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var err error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
		if mongo.IsDuplicateKeyError(err) {
			// a concurrent upsert inserted the order first, the retry matches it
			continue
		}
		break
	}
	if err != nil {
		return order, fmt.Errorf("orders.FindOneAndUpdate: %w", err)
	}

	return order, nil
}

func (r *orderRepository) AddLineItem(ctx context.Context, orderID, productID primitive.ObjectID) error {
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		now := time.Now().UTC()

		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": orderID, "status": models.OrderStatusOpen, "products.item": productID},
			bson.M{
				"$inc": bson.M{"products.$.amount": 1},
				"$set": bson.M{"updated_at": now},
			})
		if err != nil {
			return fmt.Errorf("orders.UpdateOne: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		res, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": orderID, "status": models.OrderStatusOpen, "products.item": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"products": models.LineItem{ItemID: productID, Amount: 1}},
				"$set":  bson.M{"updated_at": now},
			})
		if err != nil {
			return fmt.Errorf("orders.UpdateOne: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		// neither matched: the item was pushed concurrently, or the order left open
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": orderID, "status": models.OrderStatusOpen})
		if err != nil {
			return fmt.Errorf("orders.CountDocuments: %w", err)
		}
		if count == 0 {
			return port.ErrOrderNotOpen
		}
	}

	return apperrors.Conflict("order %s is being modified concurrently", orderID.Hex())
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	filter := bson.M{"_id": orderID}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("orders.UpdateOne: %w", err)
	}

	if res.MatchedCount == 0 && len(from) == 0 {
		return false, apperrors.NotFound("order %s not found", orderID.Hex())
	}

	return res.MatchedCount > 0, nil
}
