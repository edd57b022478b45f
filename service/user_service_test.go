package service

import (
	"context"
	"errors"
	"testing"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"
	"go-ordering/repository/memstore"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *memstore.Store, *recordingMailer) {
	t.Helper()

	store := memstore.New()
	mailer := &recordingMailer{}
	svc := NewUserService(store.Users(), store.Businesses(), mailer, bcrypt.MinCost)
	t.Cleanup(svc.Wait)

	return svc, store, mailer
}

func fakeSignup() SignupInput {
	return SignupInput{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Password:  gofakeit.Password(true, true, true, true, false, 16),
		City:      gofakeit.City(),
		Age:       gofakeit.Number(18, 80),
	}
}

func TestSignup_StoresHashNotPassword(t *testing.T) {
	svc, store, mailer := newUserService(t)
	ctx := context.Background()
	in := fakeSignup()

	user, err := svc.Signup(ctx, in)
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, models.RoleUser, user.Role)

	stored, err := store.Users().FindByEmail(ctx, in.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.NotEqual(t, in.Password, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(in.Password)))

	svc.Wait()
	assert.Equal(t, []string{user.Email}, mailer.welcome)
}

func TestSignup_BusinessAccount(t *testing.T) {
	svc, store, _ := newUserService(t)
	ctx := context.Background()

	in := fakeSignup()
	in.BusinessName = "  Luigi's  "

	user, err := svc.Signup(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBusiness, user.Role)

	owned, err := store.Businesses().FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Luigi's", owned[0].Name)
}

func TestSignup_Rejects(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	existing := fakeSignup()
	_, err := svc.Signup(ctx, existing)
	require.NoError(t, err)

	tests := []struct {
		name     string
		mutate   func(in *SignupInput)
		wantKind apperrors.Kind
	}{
		{name: "missing first name", mutate: func(in *SignupInput) { in.FirstName = " " }, wantKind: apperrors.KindValidation},
		{name: "bad email", mutate: func(in *SignupInput) { in.Email = "nope" }, wantKind: apperrors.KindValidation},
		{name: "empty password", mutate: func(in *SignupInput) { in.Password = "" }, wantKind: apperrors.KindValidation},
		{name: "negative age", mutate: func(in *SignupInput) { in.Age = -1 }, wantKind: apperrors.KindValidation},
		{name: "duplicate email", mutate: func(in *SignupInput) { in.Email = existing.Email }, wantKind: apperrors.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fakeSignup()
			tt.mutate(&in)

			_, err := svc.Signup(ctx, in)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err), "got %v", err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()
	in := fakeSignup()

	user, err := svc.Signup(ctx, in)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, in.Email, in.Password)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, in.Email, in.Password+"x")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = svc.Authenticate(ctx, gofakeit.Email(), in.Password)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

// failingBusinesses refuses every new business.
type failingBusinesses struct {
	port.BusinessRepository
}

func (failingBusinesses) Create(context.Context, models.Business) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("businesses unavailable")
}

func TestSignup_BusinessCreateFailureRemovesUser(t *testing.T) {
	store := memstore.New()
	svc := NewUserService(store.Users(), failingBusinesses{store.Businesses()}, &recordingMailer{}, bcrypt.MinCost)
	t.Cleanup(svc.Wait)
	ctx := context.Background()

	in := fakeSignup()
	in.BusinessName = "Luigi's"

	_, err := svc.Signup(ctx, in)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	_, err = store.Users().FindByEmail(ctx, in.Email)
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	// the same form can be submitted again once businesses are back
	retry := NewUserService(store.Users(), store.Businesses(), &recordingMailer{}, bcrypt.MinCost)
	t.Cleanup(retry.Wait)

	user, err := retry.Signup(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBusiness, user.Role)

	owned, err := store.Businesses().FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
