package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

// UserLoader fetches the current user row. It must return an error
// matching common.ErrorNotFound when the user does not exist.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenValidator checks a token against the codec and the store. A nil
// Expected accepts both token types.
type TokenValidator struct {
	Codec    *Codec
	Expected *TokenType
}

// NewTokenValidator returns a validator restricted to expected.
func NewTokenValidator(codec *Codec, expected TokenType) TokenValidator {
	return TokenValidator{Codec: codec, Expected: &expected}
}

// Validate decodes token, checks its type, reloads the user and compares
// token versions. Only one store read is performed and nothing is cached.
func (v TokenValidator) Validate(ctx context.Context, token string, users UserLoader) (*models.User, error) {
	user, _, err := v.ValidateClaims(ctx, token, users)
	return user, err
}

// ValidateClaims is Validate that also returns the decoded claims.
func (v TokenValidator) ValidateClaims(ctx context.Context, token string, users UserLoader) (*models.User, *Claims, error) {
	claims, err := v.Codec.Decode(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, nil, common.ErrTokenExpired
		}
		return nil, nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if v.Expected != nil && claims.TokenType != *v.Expected {
		return nil, nil, common.ErrInvalidTokenType
	}

	user, err := users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrUserNotFound
		}
		return nil, nil, err
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, nil, common.ErrTokenRevoked
	}

	return user, claims, nil
}
