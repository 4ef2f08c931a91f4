package adapters

import (
	"time"

	"remitguard/internal/decision"
	jwttoken "remitguard/internal/jwt_token"
)

// TokenAdapter exposes the JWT service as a decision.TokenSigner.
type TokenAdapter struct {
	service *jwttoken.JWTService
}

func NewTokenAdapter(service *jwttoken.JWTService) *TokenAdapter {
	return &TokenAdapter{service: service}
}

// Sign issues the token at claims.IssuedAt, or at the service clock's now
// when it is zero.
func (a *TokenAdapter) Sign(claims decision.TokenClaims) (string, time.Time, error) {
	payload := jwttoken.DecisionClaims{
		DecisionID: claims.DecisionID,
		Status:     string(claims.Status),
		SenderID:   claims.SenderID,
		ReceiverID: claims.ReceiverID,
		Amount:     claims.Amount,
		Currency:   claims.Currency,
	}
	if claims.IssuedAt.IsZero() {
		return a.service.Sign(payload)
	}
	return a.service.SignAt(payload, claims.IssuedAt)
}

func (a *TokenAdapter) Verify(token string) (decision.TokenClaims, error) {
	claims, err := a.service.Verify(token)
	if err != nil {
		return decision.TokenClaims{}, decision.ErrInvalidToken
	}
	return decision.TokenClaims{
		DecisionID: claims.DecisionID,
		Status:     decision.Status(claims.Status),
		SenderID:   claims.SenderID,
		ReceiverID: claims.ReceiverID,
		Amount:     claims.Amount,
		Currency:   claims.Currency,
		IssuedAt:   time.Unix(claims.IssuedAt, 0).UTC(),
	}, nil
}
