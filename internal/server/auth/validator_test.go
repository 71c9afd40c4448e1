package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[int64]*models.User
	calls int
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func newFixture(t *testing.T) (*Issuer, *Codec, *fakeUsers) {
	t.Helper()
	c := newTestCodec(t)
	return NewIssuer(c, time.Minute, time.Hour), c, &fakeUsers{
		users: map[int64]*models.User{1: {ID: 1, Login: "alice", TokenVersion: 0}},
	}
}

func TestTokenValidator_Validate(t *testing.T) {
	iss, c, users := newFixture(t)
	access, err := iss.IssueAccess(1, 0)
	require.NoError(t, err)
	refresh, err := iss.IssueRefresh(1, 0)
	require.NoError(t, err)
	ghost, err := iss.IssueAccess(99, 0)
	require.NoError(t, err)
	stale, err := iss.IssueAccess(1, 5)
	require.NoError(t, err)
	expired, err := NewIssuer(c, -time.Minute, 0).IssueAccess(1, 0)
	require.NoError(t, err)

	anyType := TokenValidator{Codec: c}
	accessOnly := NewTokenValidator(c, AccessToken)
	refreshOnly := NewTokenValidator(c, RefreshToken)

	tests := []struct {
		name      string
		validator TokenValidator
		token     string
		wantErr   error
		wantCalls int
	}{
		{name: "access ok", validator: accessOnly, token: access, wantCalls: 1},
		{name: "refresh ok", validator: refreshOnly, token: refresh, wantCalls: 1},
		{name: "any type accepts refresh", validator: anyType, token: refresh, wantCalls: 1},
		{name: "refresh on access endpoint", validator: accessOnly, token: refresh, wantErr: common.ErrInvalidTokenType},
		{name: "access on refresh endpoint", validator: refreshOnly, token: access, wantErr: common.ErrInvalidTokenType},
		{name: "garbage", validator: accessOnly, token: "abc", wantErr: common.ErrInvalidToken},
		{name: "expired", validator: accessOnly, token: expired, wantErr: common.ErrTokenExpired},
		{name: "unknown user", validator: accessOnly, token: ghost, wantErr: common.ErrUserNotFound, wantCalls: 1},
		{name: "version mismatch", validator: accessOnly, token: stale, wantErr: common.ErrTokenRevoked, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users.calls = 0
			u, err := tt.validator.Validate(context.Background(), tt.token, users)
			assert.Equal(t, tt.wantCalls, users.calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), u.ID)
		})
	}
}

func TestTokenValidator_RevokedAfterVersionBump(t *testing.T) {
	iss, c, users := newFixture(t)
	v := NewTokenValidator(c, AccessToken)

	tok, err := iss.IssueAccess(1, 0)
	require.NoError(t, err)
	_, err = v.Validate(context.Background(), tok, users)
	require.NoError(t, err)

	users.users[1].TokenVersion++

	_, err = v.Validate(context.Background(), tok, users)
	require.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestTokenValidator_StoreErrorPassesThrough(t *testing.T) {
	iss, c, users := newFixture(t)
	users.err = errors.New("db error: conn refused")

	tok, err := iss.IssueAccess(1, 0)
	require.NoError(t, err)

	_, err = NewTokenValidator(c, AccessToken).Validate(context.Background(), tok, users)
	require.ErrorIs(t, err, users.err)
}

func TestTokenValidator_MissingClaimsSkipStore(t *testing.T) {
	_, c, users := newFixture(t)
	exp := time.Now().Add(time.Hour).Unix()

	for _, claims := range []jwt.MapClaims{
		{"token_version": 0, "token_type": "access", "exp": exp},
		{"id": 1, "token_type": "access", "exp": exp},
	} {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, err = NewTokenValidator(c, AccessToken).Validate(context.Background(), tok, users)
		require.ErrorIs(t, err, common.ErrInvalidToken)
		require.NotErrorIs(t, err, common.ErrUserNotFound)
	}
	assert.Equal(t, 0, users.calls)
}

func TestTokenValidator_ValidateClaims(t *testing.T) {
	iss, c, users := newFixture(t)
	tok, err := iss.IssueRefresh(1, 0)
	require.NoError(t, err)

	u, claims, err := TokenValidator{Codec: c}.ValidateClaims(context.Background(), tok, users)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)
	assert.Equal(t, RefreshToken, claims.TokenType)
}
