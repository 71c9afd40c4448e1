package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
)

// UserLoaderFunc adapts a plain function to UserLoader.
type UserLoaderFunc func(ctx context.Context, id int64) (*models.User, error)

func (f UserLoaderFunc) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f(ctx, id)
}

// Guard turns an Authorization header into an authenticated user.
type Guard struct {
	validator TokenValidator
	users     UserLoader
}

// NewGuard returns a Guard that only accepts access tokens.
func NewGuard(codec *Codec, users UserLoader) *Guard {
	return &Guard{
		validator: NewTokenValidator(codec, AccessToken),
		users:     users,
	}
}

// Authenticate expects "Bearer <token>". A missing or differently shaped
// header is common.ErrUnauthenticated; validator errors pass through.
func (g *Guard) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	return g.validator.Validate(ctx, token, g.users)
}

// RequireSelf rejects actions aimed at another user's account.
func RequireSelf(user *models.User, targetID int64) error {
	if user == nil || user.ID != targetID {
		return common.ErrSelfActionRequired
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

type userCtxKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok && u != nil
}
