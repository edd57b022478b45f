package repository_test

import (
	"strings"
	"testing"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"
	"go-ordering/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type catalogRepositorySuite struct {
	suite.Suite

	container  testcontainers.Container
	client     *mongo.Client
	users      port.UserRepository
	businesses port.BusinessRepository
	products   port.ProductRepository
}

func TestCatalogRepositorySuite(t *testing.T) {
	suite.Run(t, new(catalogRepositorySuite))
}

func (suite *catalogRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startMongo(ctx)
	if err != nil {
		suite.T().Skipf("mongo container not available: %v", err)
	}

	suite.client, err = repository.ConnectDB(ctx, connStr)
	suite.Require().NoError(err)

	db := suite.client.Database("catalog_test")
	suite.Require().NoError(repository.EnsureIndexes(ctx, db))

	suite.users = repository.NewUser(db)
	suite.businesses = repository.NewBusiness(db)
	suite.products = repository.NewProduct(db)
}

func (suite *catalogRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.client != nil {
		suite.NoError(suite.client.Disconnect(ctx))
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *catalogRepositorySuite) TestCreateUser() {
	t := suite.T()
	ctx := t.Context()

	user := fakeUser()

	id, err := suite.users.Create(ctx, user)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	// lookups ignore case and surrounding spaces
	found, err := suite.users.FindByEmail(ctx, "  "+strings.ToUpper(user.Email)+" ")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, user.PasswordHash, found.PasswordHash)

	byID, err := suite.users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(user.Email), byID.Email)

	_, err = suite.users.Create(ctx, user)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// the email is free again once the user is gone
	require.NoError(t, suite.users.Delete(ctx, id))
	_, err = suite.users.FindByID(ctx, id)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = suite.users.Create(ctx, user)
	assert.NoError(t, err)
}

func (suite *catalogRepositorySuite) TestFindUser_NotFound() {
	_, err := suite.users.FindByEmail(suite.T().Context(), gofakeit.Email())
	suite.True(apperrors.IsNotFound(err))
}

func (suite *catalogRepositorySuite) TestBusinessesAndProducts() {
	t := suite.T()
	ctx := t.Context()

	ownerID := primitive.NewObjectID()
	businessID, err := suite.businesses.Create(ctx, models.Business{Name: gofakeit.Company(), OwnerID: ownerID})
	require.NoError(t, err)

	owned, err := suite.businesses.FindByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, businessID, owned[0].ID)

	p1, err := suite.products.Create(ctx, models.Product{Name: "a-" + gofakeit.Noun(), Price: 3.5, BusinessID: businessID})
	require.NoError(t, err)
	p2, err := suite.products.Create(ctx, models.Product{Name: "b-" + gofakeit.Noun(), Price: 7, BusinessID: businessID})
	require.NoError(t, err)

	listed, err := suite.products.FindByBusiness(ctx, businessID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, p1, listed[0].ID)
	assert.Equal(t, p2, listed[1].ID)

	byIDs, err := suite.products.FindByIDs(ctx, []primitive.ObjectID{p2, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, 7.0, byIDs[0].Price)

	_, err = suite.businesses.FindByID(ctx, primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))
}

func fakeUser() models.User {
	return models.User{
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Email:        gofakeit.Email(),
		PasswordHash: gofakeit.Password(true, true, true, false, false, 60),
		City:         gofakeit.City(),
		Age:          gofakeit.Number(18, 90),
		Role:         models.RoleUser,
	}
}
