package services

import (
	"context"
	"strings"
	"time"

	"hostel-meals/utils"
)

// Principal is a verified caller. Only the email flows further into the core.
type Principal struct {
	Email  string
	Claims *utils.Claims
}

// Verifier resolves a bearer credential to a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewTokenService(key []byte, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{key: key, issuer: issuer, ttl: ttl}
}

// Issue signs a token for email.
func (s *TokenService) Issue(email, role string) (string, error) {
	return utils.GenerateJWT(s.key, s.issuer, email, role, s.ttl)
}

// Verify fails with Unauthenticated when token is empty, malformed, expired,
// signed with another key or issued by someone else.
func (s *TokenService) Verify(_ context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, utils.Unauthenticated("Unauthorized access")
	}
	claims, err := utils.ParseJWT(s.key, s.issuer, token)
	if err != nil {
		return nil, utils.Unauthenticated("Invalid token")
	}
	return &Principal{Email: claims.Email, Claims: claims}, nil
}
