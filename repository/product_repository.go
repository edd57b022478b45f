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

type productRepository struct {
	collection *mongo.Collection
}

func NewProduct(db *mongo.Database) port.ProductRepository {
	return &productRepository{
		collection: db.Collection(productsCollection),
	}
}

func (r *productRepository) Create(ctx context.Context, product models.Product) (primitive.ObjectID, error) {
	product.ID = primitive.NilObjectID

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("products.InsertOne: %w", err)
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *productRepository) FindByID(ctx context.Context, productID primitive.ObjectID) (models.Product, error) {
	var product models.Product

	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return product, apperrors.WrapNotFound(err, "product %s not found", productID.Hex())
	}
	if err != nil {
		return product, fmt.Errorf("products.FindOne: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
}

func (r *productRepository) FindByBusiness(ctx context.Context, businessID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{"business": businessID}, opts)
}

func (r *productRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("products.Find: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}

	return products, nil
}
