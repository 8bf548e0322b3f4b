package services

import (
	"context"
	"errors"
	"strings"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"
)

// Policy is a role and/or tier requirement.
type Policy struct {
	Role    string // required role, empty for any
	Premium bool   // deny the lowest tier
	Denied  string // message for Forbidden
}

var (
	AdminOnly   = Policy{Role: models.RoleAdmin, Denied: "Forbidden: Admins only"}
	PremiumOnly = Policy{Premium: true, Denied: "Only premium users can request meals."}
)

// UserFinder is the lookup the policy needs.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authorizer evaluates policies against the stored user record. Role claims
// inside tokens are never trusted.
type Authorizer struct {
	users UserFinder
}

func NewAuthorizer(users UserFinder) *Authorizer {
	return &Authorizer{users: users}
}

// Authorize returns the user behind email when it satisfies p. An unknown
// user is denied like any other failed check.
func (a *Authorizer) Authorize(ctx context.Context, email string, p Policy) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, utils.Forbidden(p.Denied)
	}
	user, err := a.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.Forbidden(p.Denied)
	}
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if p.Role != "" && user.Role != p.Role {
		return nil, utils.Forbidden(p.Denied)
	}
	if p.Premium && models.IsBronze(user.Badge) {
		return nil, utils.Forbidden(p.Denied)
	}
	return user, nil
}

// AuthorizePrincipal is Authorize for an authenticated caller.
func (a *Authorizer) AuthorizePrincipal(ctx context.Context, principal *Principal, p Policy) (*models.User, error) {
	if principal == nil {
		return nil, utils.Unauthenticated("Unauthorized access")
	}
	return a.Authorize(ctx, principal.Email, p)
}

// SelfOrAdmin allows the caller to act on their own email, and admins on any.
func (a *Authorizer) SelfOrAdmin(ctx context.Context, principal *Principal, email string) error {
	if principal == nil {
		return utils.Unauthenticated("Unauthorized access")
	}
	if strings.EqualFold(principal.Email, email) {
		return nil
	}
	_, err := a.Authorize(ctx, principal.Email, AdminOnly)
	return err
}
