package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hostel-meals/services"
	"hostel-meals/utils"
)

// Key type for context
type contextKey string

const PrincipalContextKey = contextKey("principal")

// Auth verifies bearer tokens and applies authorization policies.
type Auth struct {
	verifier   services.Verifier
	authorizer *services.Authorizer
}

func NewAuth(verifier services.Verifier, authorizer *services.Authorizer) *Auth {
	return &Auth{verifier: verifier, authorizer: authorizer}
}

// Authenticate verifies the bearer token and attaches the principal to the context
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, r, utils.Unauthenticated(err.Error()))
			return
		}

		principal, err := a.verifier.Verify(r.Context(), tokenStr)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireAdmin ensures that the authenticated user has admin privileges.
// It must run after Authenticate.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(services.AdminOnly)(next)
}

// Require gates the handler on policy p for the authenticated user.
func (a *Auth) Require(p services.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFrom(r.Context())
			if _, err := a.authorizer.AuthorizePrincipal(r.Context(), principal, p); err != nil {
				utils.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *services.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFrom returns the principal attached by Authenticate.
func PrincipalFrom(ctx context.Context) (*services.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(*services.Principal)
	return p, ok && p != nil
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization header missing")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("Invalid Authorization header format")
	}
	return parts[1], nil
}
