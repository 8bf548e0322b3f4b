// Package store is the document store handle shared by the services. It is
// opened once at startup, passed to each service at construction and closed
// on shutdown.
package store

import (
	"context"
	"errors"

	"hostel-meals/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Collection names.
const (
	UsersCollection         = "users"
	MealsCollection         = "meals"
	UpcomingMealsCollection = "upcomingMeals"
	ReviewsCollection       = "reviews"
	LikesCollection         = "likes"
	MealRequestsCollection  = "mealRequests"
	PaymentsCollection      = "payment"
)

type UserStore interface {
	// InsertUser returns ErrDuplicate when the email is taken.
	InsertUser(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SearchUsers matches email or name, case-insensitively.
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	SetUserRole(ctx context.Context, id primitive.ObjectID, role string) error
	SetUserBadge(ctx context.Context, email, badge string) error
}

type MealStore interface {
	// InsertMeal returns ErrDuplicate when a meal with the same SourceUpcomingID exists.
	InsertMeal(ctx context.Context, m *models.Meal) (primitive.ObjectID, error)
	FindMeal(ctx context.Context, id primitive.ObjectID) (*models.Meal, error)
	FindMealBySource(ctx context.Context, upcomingID primitive.ObjectID) (*models.Meal, error)
	// FindMeals returns one page of matching meals and the total match count.
	FindMeals(ctx context.Context, q models.MealQuery) ([]models.Meal, int64, error)
	// IncMealCounter atomically adds delta to a counter. Decrements never take
	// the counter below zero.
	IncMealCounter(ctx context.Context, id primitive.ObjectID, c models.Counter, delta int64) error
	SetMealCounters(ctx context.Context, id primitive.ObjectID, likes, reviews int64) error
	DeleteMeal(ctx context.Context, id primitive.ObjectID) error
	CountMeals(ctx context.Context) (int64, error)
	SumMealLikes(ctx context.Context) (int64, error)
}

type UpcomingStore interface {
	InsertUpcoming(ctx context.Context, m *models.UpcomingMeal) (primitive.ObjectID, error)
	FindUpcoming(ctx context.Context, id primitive.ObjectID) (*models.UpcomingMeal, error)
	// ListUpcoming returns staged meals, most liked first.
	ListUpcoming(ctx context.Context) ([]models.UpcomingMeal, error)
	// AddUpcomingLike adds email to likedUsers and bumps likes in one write.
	// It reports false when email had already liked the meal.
	AddUpcomingLike(ctx context.Context, id primitive.ObjectID, email string) (bool, error)
	DeleteUpcoming(ctx context.Context, id primitive.ObjectID) error
}

type LikeStore interface {
	// InsertLike returns ErrDuplicate when (MealID, UserEmail) already liked.
	InsertLike(ctx context.Context, l *models.Like) error
	LikeExists(ctx context.Context, mealID primitive.ObjectID, email string) (bool, error)
	CountLikes(ctx context.Context, mealID primitive.ObjectID) (int64, error)
}

type ReviewStore interface {
	InsertReview(ctx context.Context, r *models.Review) (primitive.ObjectID, error)
	FindReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	// FindReviews returns matching reviews, newest first.
	FindReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, error)
	CountReviews(ctx context.Context, f models.ReviewFilter) (int64, error)
	UpdateReviewText(ctx context.Context, id primitive.ObjectID, text string) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}

type RequestStore interface {
	// InsertRequest returns ErrDuplicate when (MealID, UserEmail) was already requested.
	InsertRequest(ctx context.Context, r *models.MealRequest) (primitive.ObjectID, error)
	FindRequest(ctx context.Context, id primitive.ObjectID) (*models.MealRequest, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID) (*models.MealRequest, error)
	DeleteRequest(ctx context.Context, id primitive.ObjectID) error
	// RequestsWithMeals inner-joins the user's requests with their meals.
	// Requests whose meal is gone are dropped.
	RequestsWithMeals(ctx context.Context, email string) ([]models.RequestView, error)
	// SearchRequests matches user email or name; an empty query lists all.
	SearchRequests(ctx context.Context, query string) ([]models.MealRequest, error)
	// CountRequests counts one user's requests, or all when email is empty.
	CountRequests(ctx context.Context, email string) (int64, error)
}

type PaymentStore interface {
	InsertPayment(ctx context.Context, p *models.Payment) (primitive.ObjectID, error)
	// FindPayments returns the user's payments, newest first.
	FindPayments(ctx context.Context, email string) ([]models.Payment, error)
	CountPayments(ctx context.Context, email string) (int64, error)
}

// Store is the full handle.
type Store interface {
	UserStore
	MealStore
	UpcomingStore
	LikeStore
	ReviewStore
	RequestStore
	PaymentStore
	Close(ctx context.Context) error
}
