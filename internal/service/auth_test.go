package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@example.org",
		Username:  username,
		FirstName: "Test",
		LastName:  "Cook",
		Password:  "correct-horse",
	}
}

func TestAuth_RegisterLoginAndValidate(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewAuthService(db, "test-secret")

	user, err := svc.Register(ctx, registerRequest("chef"))
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "CHEF@example.org", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "chef", claims.Username)

	_, _, err = svc.Login(ctx, "chef@example.org", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.org", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuth_RegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewAuthService(db, "test-secret")

	_, err := svc.Register(ctx, registerRequest("chef"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest("chef"))
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestAuth_RegisterValidatesUsername(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewAuthService(db, "test-secret")

	for _, name := range []string{"me", "ME", "has space", "semi;colon", strings.Repeat("a", 151)} {
		_, err := svc.Register(ctx, registerRequest(name))
		assert.ErrorIs(t, err, service.ErrInvalidInput, "username %q", name)
	}
	_, err := svc.Register(ctx, registerRequest("ok.name+tag-_"))
	assert.NoError(t, err)
}

func TestAuth_ValidateTokenRejectsForeignSecret(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	user := testhelpers.CreateUser(t, db, "chef")

	token, err := service.NewAuthService(db, "one").GenerateToken(user)
	require.NoError(t, err)

	_, err = service.NewAuthService(db, "two").ValidateToken(token)
	assert.Error(t, err)
	_, err = service.NewAuthService(db, "one").ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuth_SetPassword(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewAuthService(db, "test-secret")
	user := testhelpers.CreateUser(t, db, "chef")

	assert.ErrorIs(t, svc.SetPassword(ctx, user.ID, "wrong", "new-password"), service.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetPassword(ctx, user.ID, "password123", "short"), service.ErrInvalidInput)
	require.NoError(t, svc.SetPassword(ctx, user.ID, "password123", "new-password"))

	_, _, err := svc.Login(ctx, user.Email, "new-password")
	assert.NoError(t, err)
}
