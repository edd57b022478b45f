package repository

import (
	"context"
	"errors"
	"fmt"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type businessRepository struct {
	collection *mongo.Collection
}

func NewBusiness(db *mongo.Database) port.BusinessRepository {
	return &businessRepository{
		collection: db.Collection(businessesCollection),
	}
}

func (r *businessRepository) Create(ctx context.Context, business models.Business) (primitive.ObjectID, error) {
	business.ID = primitive.NilObjectID

	result, err := r.collection.InsertOne(ctx, business)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("businesses.InsertOne: %w", err)
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *businessRepository) List(ctx context.Context) ([]models.Business, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *businessRepository) FindByID(ctx context.Context, businessID primitive.ObjectID) (models.Business, error) {
	var business models.Business

	err := r.collection.FindOne(ctx, bson.M{"_id": businessID}).Decode(&business)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return business, apperrors.WrapNotFound(err, "business %s not found", businessID.Hex())
	}
	if err != nil {
		return business, fmt.Errorf("businesses.FindOne: %w", err)
	}

	return business, nil
}

func (r *businessRepository) FindByIDs(ctx context.Context, businessIDs []primitive.ObjectID) ([]models.Business, error) {
	if len(businessIDs) == 0 {
		return []models.Business{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": businessIDs}})
}

func (r *businessRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Business, error) {
	return r.find(ctx, bson.M{"owner": ownerID})
}

func (r *businessRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Business, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("businesses.Find: %w", err)
	}

	businesses := []models.Business{}
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}

	return businesses, nil
}
