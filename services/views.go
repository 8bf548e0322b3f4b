package services

import (
	"context"
	"strings"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"
)

// Views are read-only roll-ups recomputed on every call.
type Views struct {
	users    store.UserStore
	meals    store.MealStore
	reviews  store.ReviewStore
	requests store.RequestStore
	payments store.PaymentStore
}

func NewViews(users store.UserStore, meals store.MealStore, reviews store.ReviewStore, requests store.RequestStore, payments store.PaymentStore) *Views {
	return &Views{
		users:    users,
		meals:    meals,
		reviews:  reviews,
		requests: requests,
		payments: payments,
	}
}

// RequestsForUser joins the user's requests with their meals. Requests whose
// meal has been deleted are left out.
func (v *Views) RequestsForUser(ctx context.Context, email string) ([]models.RequestView, error) {
	if strings.TrimSpace(email) == "" {
		return nil, utils.ValidationError("Email is required")
	}
	views, err := v.requests.RequestsWithMeals(ctx, email)
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return views, nil
}

// AdminDashboard totals the whole catalog.
func (v *Views) AdminDashboard(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	var err error
	if stats.TotalMeals, err = v.meals.CountMeals(ctx); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if stats.TotalReviews, err = v.reviews.CountReviews(ctx, models.ReviewFilter{}); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if stats.TotalLikes, err = v.meals.SumMealLikes(ctx); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if stats.TotalRequests, err = v.requests.CountRequests(ctx, ""); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return &stats, nil
}

// UserDashboard totals one user's activity.
func (v *Views) UserDashboard(ctx context.Context, email string) (*models.UserStats, error) {
	if strings.TrimSpace(email) == "" {
		return nil, utils.ValidationError("Email is required")
	}
	user, err := v.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	stats := models.UserStats{Badge: user.Badge}
	if stats.Badge == "" {
		stats.Badge = models.BadgeBronze
	}
	if stats.RequestedMeals, err = v.requests.CountRequests(ctx, email); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if stats.Reviews, err = v.reviews.CountReviews(ctx, models.ReviewFilter{Email: email}); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	if stats.Payments, err = v.payments.CountPayments(ctx, email); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return &stats, nil
}
