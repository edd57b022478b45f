package service

import (
	"context"
	"testing"

	"go-ordering/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCatalog_BusinessWithProducts(t *testing.T) {
	f := newFixture(t)
	catalog := NewCatalogService(f.store.Businesses(), f.store.Products())
	ctx := context.Background()

	business, products, err := catalog.Business(ctx, f.business.ID)
	require.NoError(t, err)
	assert.Equal(t, f.business.Name, business.Name)
	require.Len(t, products, 2)
	assert.Equal(t, "Pizza", products[0].Name)
	assert.Equal(t, "Salad", products[1].Name)

	_, _, err = catalog.Business(ctx, primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalog_CreateProduct(t *testing.T) {
	f := newFixture(t)
	catalog := NewCatalogService(f.store.Businesses(), f.store.Products())
	ctx := context.Background()

	product, err := catalog.CreateProduct(ctx, f.owner.ID, f.business.ID, " Tiramisu ", 5)
	require.NoError(t, err)
	assert.Equal(t, "Tiramisu", product.Name)
	assert.False(t, product.ID.IsZero())

	_, err = catalog.CreateProduct(ctx, f.customer.ID, f.business.ID, "Soup", 5)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = catalog.CreateProduct(ctx, f.owner.ID, f.business.ID, "Soup", 0)
	assert.True(t, apperrors.IsValidation(err))

	_, err = catalog.CreateProduct(ctx, f.owner.ID, f.business.ID, "", 3)
	assert.True(t, apperrors.IsValidation(err))
}
