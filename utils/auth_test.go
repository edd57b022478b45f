package utils

import (
	"testing"
	"time"

	"go-ordering/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: models.RoleBusiness}

	token, err := m.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := m.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleBusiness, claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: models.RoleUser}

	expired, err := NewTokenManager("secret", -time.Minute).GenerateJWT(user)
	require.NoError(t, err)

	foreign, err := NewTokenManager("other-secret", time.Hour).GenerateJWT(user)
	require.NoError(t, err)

	m := NewTokenManager("secret", time.Hour)
	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ParseJWT(token)
			assert.Error(t, err)
		})
	}
}
