package jwttoken

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// DefaultExpiry is how long a decision token stays valid after issuance.
const DefaultExpiry = 15 * time.Minute

// ErrInvalidToken is returned for every verification failure: malformed
// tokens, bad signatures, unexpected algorithms and expired tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// DecisionClaims is the payload attesting to one decision.
type DecisionClaims struct {
	DecisionID string  `json:"decisionId"`
	Status     string  `json:"status"`
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	IssuedAt   int64   `json:"issuedAt"` // unix seconds
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 decision tokens.
type JWTService struct {
	signingKey []byte
	expiry     time.Duration
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithExpiry overrides DefaultExpiry.
func WithExpiry(d time.Duration) Option {
	return func(s *JWTService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

func NewJWTService(signingKey []byte, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: signingKey,
		expiry:     DefaultExpiry,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign stamps iat and exp from the service clock and returns the compact
// token.
func (s *JWTService) Sign(claims DecisionClaims) (string, time.Time, error) {
	return s.SignAt(claims, s.now())
}

// SignAt is Sign with an explicit issuance instant. The returned issuedAt is
// truncated to whole seconds, as carried in the token.
func (s *JWTService) SignAt(claims DecisionClaims, at time.Time) (string, time.Time, error) {
	issuedAt := at.Truncate(time.Second)
	claims.IssuedAt = issuedAt.Unix()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign decision token: %w", err)
	}
	return signed, issuedAt, nil
}

// Verify checks signature, algorithm and expiry and returns the payload.
func (s *JWTService) Verify(tokenString string) (*DecisionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &DecisionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*DecisionClaims)
	if !ok || claims.DecisionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DeriveSigningKey expands a configured secret into a 32-byte HMAC key so
// short or low-entropy secrets still produce a full-width key.
func DeriveSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("remitguard decision token v1"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return key, nil
}
