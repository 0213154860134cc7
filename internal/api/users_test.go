package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registration(username string) map[string]string {
	return map[string]string{
		"email":      username + "@example.org",
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "long-enough-pw",
	}
}

func TestUsers_Register(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/users", "", registration("carol"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[types.User](t, w)
	assert.Equal(t, "carol", user.Username)
	assert.NotContains(t, w.Body.String(), "password")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"duplicate", registration("carol")},
		{"reserved username", registration("me")},
		{"bad username", registration("no spaces")},
		{"missing field", map[string]string{"email": "x@example.org"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/v1/users", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestUsers_MeAndPassword(t *testing.T) {
	a := newTestAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice")
	tok := a.token(t, alice)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/v1/users/me", "", nil).Code)

	w := a.do(t, http.MethodGet, "/api/v1/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.ID, decode[types.User](t, w).ID)

	w = a.do(t, http.MethodPost, "/api/v1/users/set_password", tok, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "brand-new-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/users/set_password", tok, map[string]string{
		"current_password": "password123",
		"new_password":     "brand-new-password",
	})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/v1/auth/token/login", "", map[string]string{
		"email":    alice.Email,
		"password": "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsers_Avatar(t *testing.T) {
	a := newTestAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice")
	tok := a.token(t, alice)

	w := a.do(t, http.MethodPut, "/api/v1/users/me/avatar", tok, map[string]string{
		"avatar": "data:image/png;base64,iVBORw0KGgo=",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "uploads need an image store")

	w = a.do(t, http.MethodPut, "/api/v1/users/me/avatar", tok, map[string]string{
		"avatar": "https://cdn.example.com/alice.png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"avatar":"https://cdn.example.com/alice.png"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, "/api/v1/users/me/avatar", tok, nil).Code)
	w = a.do(t, http.MethodGet, "/api/v1/users/me", tok, nil)
	assert.Empty(t, decode[types.User](t, w).Avatar)
}

func TestUsers_Subscriptions(t *testing.T) {
	a := newTestAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice")
	bob := testhelpers.CreateUser(t, a.db, "bob")
	flour := testhelpers.CreateIngredient(t, a.db, "Flour", "g")
	for _, name := range []string{"Bread", "Buns", "Bagels"} {
		testhelpers.CreateRecipe(t, a.db, bob, name, testhelpers.Amount{Ingredient: flour, Amount: 100})
	}
	tok := a.token(t, alice)
	subscribe := "/api/v1/users/" + bob.ID.String() + "/subscribe"

	w := a.do(t, http.MethodPost, "/api/v1/users/"+alice.ID.String()+"/subscribe", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "self follow")

	w = a.do(t, http.MethodPost, subscribe+"?recipes_limit=2", tok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.Subscription](t, w)
	assert.Equal(t, bob.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(3), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, subscribe, tok, nil).Code, "already following")

	w = a.do(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.Subscription]](t, w)
	require.Equal(t, int64(1), page.Count)
	assert.Equal(t, "bob", page.Results[0].Username)
	assert.Len(t, page.Results[0].Recipes, 1)

	w = a.do(t, http.MethodGet, "/api/v1/users/"+bob.ID.String(), tok, nil)
	assert.True(t, decode[types.User](t, w).IsSubscribed)
	w = a.do(t, http.MethodGet, "/api/v1/users/"+bob.ID.String(), "", nil)
	assert.False(t, decode[types.User](t, w).IsSubscribed)

	w = a.do(t, http.MethodGet, "/api/v1/users/followers", a.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	followers := decode[types.Page[types.User]](t, w)
	require.Len(t, followers.Results, 1)
	assert.Equal(t, alice.ID, followers.Results[0].ID)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, subscribe, tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodDelete, subscribe, tok, nil).Code, "not following")
}

func TestUsers_List(t *testing.T) {
	a := newTestAPI(t)
	for _, name := range []string{"dave", "carol", "erin"} {
		testhelpers.CreateUser(t, a.db, name)
	}

	w := a.do(t, http.MethodGet, "/api/v1/users?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.User]](t, w)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "carol", page.Results[0].Username)
	require.NotNil(t, page.Next)
	assert.Equal(t, "/api/v1/users?limit=2&page=2", *page.Next)
}
