// Package controllers holds the HTTP handlers. Each controller wraps the
// services for one area and translates between JSON and service calls.
package controllers

import (
	"context"
	"net/http"
	"time"

	"hostel-meals/middleware"
	"hostel-meals/services"
	"hostel-meals/utils"
)

const dbTimeout = 5 * time.Second

// withTimeout bounds a handler's store work.
func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), dbTimeout)
}

// principal returns the caller attached by the auth middleware.
func principal(r *http.Request) (*services.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, utils.Unauthenticated("Unauthorized access")
	}
	return p, nil
}

// list keeps empty results rendering as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
