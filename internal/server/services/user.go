// Package services contains server-side business logic. This file implements
// UserService: registration, login, token refresh and verification, token
// revocation and balance credit.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/auth"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/config"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scriptkeeper/internal/shared"
	"github.com/shopspring/decimal"
)

// Limits of NUMERIC(30,10).
const (
	maxAmountDigits = 30
	maxAmountScale  = 10
)

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a token pair
// - Refresh: exchange a refresh token for a new pair
// - Verify: report who a token belongs to
// - RevokeTokens / AddMoney: self-only account mutations
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	issuer      *auth.Issuer
	codec       *auth.Codec
	guard       *auth.Guard
	dummyHash   string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, opts ...auth.CodecOption) (*UserService, error) {
	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.JWTAlgorithm, opts...)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	s := &UserService{
		repomanager: m,
		hasher:      hasher,
		issuer:      auth.NewIssuer(codec, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		codec:       codec,
	}
	s.guard = auth.NewGuard(codec, auth.UserLoaderFunc(s.loadUser))

	// Login compares against this hash when the login is unknown so that
	// both paths cost one bcrypt comparison.
	seed, err := shared.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	if s.dummyHash, err = hasher.Hash(seed); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *UserService) loadUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, id)
}

// Register creates a new user. A taken login yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, login, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	u, err := repo.Create(ctx, &models.User{Login: login, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and returns a fresh TokenPair.
func (s *UserService) Login(ctx context.Context, login, password string) (*auth.TokenPair, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return s.issuer.IssuePair(user)
}

// Refresh validates a refresh token and mints a new pair from the current
// user row. The old refresh token stays valid until it expires or the user
// revokes their tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	user, err := auth.NewTokenValidator(s.codec, auth.RefreshToken).
		Validate(ctx, refreshToken, auth.UserLoaderFunc(s.loadUser))
	if err != nil {
		return nil, err
	}
	return s.issuer.IssuePair(user)
}

// Verify validates a token of either type and returns its owner and type.
func (s *UserService) Verify(ctx context.Context, token string) (*models.User, auth.TokenType, error) {
	user, claims, err := auth.TokenValidator{Codec: s.codec}.
		ValidateClaims(ctx, token, auth.UserLoaderFunc(s.loadUser))
	if err != nil {
		return nil, "", err
	}
	return user, claims.TokenType, nil
}

// Authenticate resolves an Authorization header to an access-token user.
func (s *UserService) Authenticate(ctx context.Context, header string) (*models.User, error) {
	return s.guard.Authenticate(ctx, header)
}

// RevokeTokens invalidates every token issued to targetID so far.
func (s *UserService) RevokeTokens(ctx context.Context, actor *models.User, targetID int64) error {
	if err := auth.RequireSelf(actor, targetID); err != nil {
		return err
	}
	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Users(tx).IncrementTokenVersion(ctx, targetID)
		return err
	})
}

// AddMoney credits amount to targetID and returns the new balance. The
// amount is validated before any storage access.
func (s *UserService) AddMoney(ctx context.Context, actor *models.User, targetID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := auth.RequireSelf(actor, targetID); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		balance, err = s.repomanager.Users(tx).AddMoney(ctx, targetID, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ValidateAmount accepts strictly positive amounts that fit NUMERIC(30,10).
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", common.ErrValidation)
	}

	scale := 0
	if _, frac, ok := strings.Cut(amount.String(), "."); ok {
		scale = len(frac)
	}
	if scale > maxAmountScale {
		return fmt.Errorf("%w: amount must have no more than %d decimal places", common.ErrValidation, maxAmountScale)
	}

	intDigits := len(amount.Truncate(0).String())
	if amount.LessThan(decimal.NewFromInt(1)) {
		intDigits = 0
	}
	if intDigits > maxAmountDigits-maxAmountScale {
		return fmt.Errorf("%w: amount must have no more than %d digits before the decimal point", common.ErrValidation, maxAmountDigits-maxAmountScale)
	}
	return nil
}
