package service

import (
	"context"
	"fmt"
	"strings"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService struct {
	businesses port.BusinessRepository
	products   port.ProductRepository
}

func NewCatalogService(businesses port.BusinessRepository, products port.ProductRepository) *CatalogService {
	return &CatalogService{businesses: businesses, products: products}
}

func (s *CatalogService) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	businesses, err := s.businesses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("businesses.List: %w", err)
	}
	return businesses, nil
}

func (s *CatalogService) Business(ctx context.Context, businessID primitive.ObjectID) (models.Business, []models.Product, error) {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		return models.Business{}, nil, fmt.Errorf("businesses.FindByID: %w", err)
	}

	products, err := s.products.FindByBusiness(ctx, businessID)
	if err != nil {
		return models.Business{}, nil, fmt.Errorf("products.FindByBusiness: %w", err)
	}

	return business, products, nil
}

func (s *CatalogService) OwnedBusinesses(ctx context.Context, ownerID primitive.ObjectID) ([]models.Business, error) {
	businesses, err := s.businesses.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("businesses.FindByOwner: %w", err)
	}
	return businesses, nil
}

// CreateProduct adds a product to a business owned by ownerID.
func (s *CatalogService) CreateProduct(ctx context.Context, ownerID, businessID primitive.ObjectID, name string, price float64) (models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Product{}, apperrors.Validation("product name is required")
	}
	if price <= 0 {
		return models.Product{}, apperrors.Validation("price must be positive")
	}

	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		return models.Product{}, fmt.Errorf("businesses.FindByID: %w", err)
	}
	if business.OwnerID != ownerID {
		return models.Product{}, apperrors.Forbidden("business %s belongs to another owner", businessID.Hex())
	}

	product := models.Product{Name: name, Price: price, BusinessID: businessID}
	product.ID, err = s.products.Create(ctx, product)
	if err != nil {
		return models.Product{}, fmt.Errorf("products.Create: %w", err)
	}

	return product, nil
}
