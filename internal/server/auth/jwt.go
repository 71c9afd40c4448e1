package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

func (t TokenType) valid() bool {
	return t == AccessToken || t == RefreshToken
}

// ErrMalformedToken covers every decode failure other than expiry: bad
// structure, bad signature, unexpected algorithm or unexpected claims.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the token payload. TokenVersion is a snapshot of the user's
// token_version at issuance.
type Claims struct {
	UserID       int64     `json:"id"`
	TokenVersion int64     `json:"token_version"`
	TokenType    TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// UnmarshalJSON requires positive id and non-negative token_version claims.
// Anything else is ErrMalformedToken.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	var wire struct {
		plain
		UserID       *int64 `json:"id"`
		TokenVersion *int64 `json:"token_version"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.UserID == nil:
		return fmt.Errorf("%w: missing id claim", ErrMalformedToken)
	case wire.TokenVersion == nil:
		return fmt.Errorf("%w: missing token_version claim", ErrMalformedToken)
	case *wire.UserID <= 0:
		return fmt.Errorf("%w: invalid id claim %d", ErrMalformedToken, *wire.UserID)
	case *wire.TokenVersion < 0:
		return fmt.Errorf("%w: invalid token_version claim %d", ErrMalformedToken, *wire.TokenVersion)
	}

	*c = Claims(wire.plain)
	c.UserID = *wire.UserID
	c.TokenVersion = *wire.TokenVersion
	return nil
}

// Codec signs and verifies HMAC JWTs with one configured algorithm.
type Codec struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	now    func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec builds a Codec for one of HS256, HS384 or HS512.
func NewCodec(secret []byte, algorithm string, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}

	c := &Codec{method: method, secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Sign serializes claims into a compact signed token.
func (c *Codec) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)
	return token.SignedString(c.secret)
}

// Decode verifies token and returns its claims. Expired tokens yield
// common.ErrTokenExpired; any other failure wraps ErrMalformedToken.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	if !claims.TokenType.valid() {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrMalformedToken, claims.TokenType)
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
	}
	return c.secret, nil
}
