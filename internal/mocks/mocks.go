// Package mocks holds testify mocks for the narrow interfaces the services
// and middleware depend on.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/types"
)

// TokenValidator mocks middleware.TokenValidator.
type TokenValidator struct {
	mock.Mock
}

func (m *TokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}
