package auth

import (
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issuer mints access and refresh tokens carrying the user's current
// token_version.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *Issuer) IssueAccess(userID, tokenVersion int64) (string, error) {
	return i.issue(userID, tokenVersion, AccessToken, i.accessTTL)
}

func (i *Issuer) IssueRefresh(userID, tokenVersion int64) (string, error) {
	return i.issue(userID, tokenVersion, RefreshToken, i.refreshTTL)
}

// IssuePair mints both tokens for user. The caller must pass a freshly
// loaded row so that the embedded version is current.
func (i *Issuer) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := i.IssueAccess(user.ID, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefresh(user.ID, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) issue(userID, tokenVersion int64, typ TokenType, ttl time.Duration) (string, error) {
	now := i.codec.Now()
	return i.codec.Sign(&Claims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		TokenType:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}
