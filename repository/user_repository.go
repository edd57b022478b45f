package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUser(db *mongo.Database) port.UserRepository {
	return &userRepository{
		collection: db.Collection(usersCollection),
	}
}

func (r *userRepository) Create(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	user.ID = primitive.NilObjectID
	user.Email = normalizeEmail(user.Email)

	result, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, apperrors.Conflict("email %s is already registered", user.Email)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("users.InsertOne: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("users.InsertOne: unexpected id type %T", result.InsertedID)
	}

	return id, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User

	err := r.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, apperrors.WrapNotFound(err, "user not found")
	}
	if err != nil {
		return user, fmt.Errorf("users.FindOne: %w", err)
	}

	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	var user models.User

	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, apperrors.WrapNotFound(err, "user not found")
	}
	if err != nil {
		return user, fmt.Errorf("users.FindOne: %w", err)
	}

	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("users.DeleteOne: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
