package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"hostel-meals/metrics"
	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementLedger owns likes and reviews and keeps the meal counters that
// project them.
type EngagementLedger struct {
	meals    store.MealStore
	likes    store.LikeStore
	reviews  store.ReviewStore
	upcoming store.UpcomingStore
	now      func() time.Time
}

func NewEngagementLedger(meals store.MealStore, likes store.LikeStore, reviews store.ReviewStore, upcoming store.UpcomingStore) *EngagementLedger {
	return &EngagementLedger{
		meals:    meals,
		likes:    likes,
		reviews:  reviews,
		upcoming: upcoming,
		now:      time.Now,
	}
}

// Like records that email likes the meal. Repeating it is a no-op reported
// with Modified 0.
func (l *EngagementLedger) Like(ctx context.Context, mealID, email string) (models.LikeResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.LikeResult{}, utils.ValidationError("User email is required in body")
	}
	id, err := parseID(mealID, "meal")
	if err != nil {
		return models.LikeResult{}, err
	}
	if _, err := l.meals.FindMeal(ctx, id); err != nil {
		return models.LikeResult{}, storeErr(err, "Meal not found")
	}

	like := &models.Like{MealID: id, UserEmail: email, Time: l.now().UTC()}
	err = l.likes.InsertLike(ctx, like)
	if errors.Is(err, store.ErrDuplicate) {
		metrics.RecordLike("meal", false)
		return models.LikeResult{Liked: true, Modified: 0}, nil
	}
	if err != nil {
		return models.LikeResult{}, utils.StoreError(internalError, err)
	}

	if err := l.meals.IncMealCounter(ctx, id, models.LikesCounter, 1); err != nil {
		// The like row is the record of truth; rebuild the projection from it.
		logrus.WithError(err).WithField("meal_id", id.Hex()).Warn("like counter increment failed, recounting")
		if _, rerr := l.recount(ctx, id); rerr != nil {
			return models.LikeResult{}, utils.StoreError(internalError, rerr)
		}
	}
	metrics.RecordLike("meal", true)
	return models.LikeResult{Liked: true, Modified: 1}, nil
}

// CheckLiked reports whether email has liked the meal. An empty email is
// simply "not liked".
func (l *EngagementLedger) CheckLiked(ctx context.Context, mealID, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	id, err := parseID(mealID, "meal")
	if err != nil {
		return false, err
	}
	liked, err := l.likes.LikeExists(ctx, id, email)
	if err != nil {
		return false, utils.StoreError(internalError, err)
	}
	return liked, nil
}

// LikeUpcoming has the same contract as Like, with membership kept on the
// upcoming meal itself.
func (l *EngagementLedger) LikeUpcoming(ctx context.Context, upcomingID, email string) (models.LikeResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.LikeResult{}, utils.ValidationError("User email is required in body")
	}
	id, err := parseID(upcomingID, "upcoming meal")
	if err != nil {
		return models.LikeResult{}, err
	}
	added, err := l.upcoming.AddUpcomingLike(ctx, id, email)
	if err != nil {
		return models.LikeResult{}, storeErr(err, "Upcoming meal not found")
	}
	metrics.RecordLike("upcoming", added)
	if !added {
		return models.LikeResult{Liked: true, Modified: 0}, nil
	}
	return models.LikeResult{Liked: true, Modified: 1}, nil
}

// ReviewInput is a new review.
type ReviewInput struct {
	MealID    string
	MealTitle string
	Email     string
	Name      string
	Review    string
}

// AddReview always inserts and bumps the meal's reviews_count.
func (l *EngagementLedger) AddReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	id, err := parseID(in.MealID, "meal")
	if err != nil {
		return nil, err
	}
	review := &models.Review{
		MealID:    id,
		MealTitle: in.MealTitle,
		Email:     strings.TrimSpace(in.Email),
		Name:      in.Name,
		Review:    in.Review,
		Time:      l.now().UTC(),
	}
	if review.ID, err = l.reviews.InsertReview(ctx, review); err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	l.adjustReviews(ctx, id, 1)
	metrics.RecordReview("add")
	return review, nil
}

// adjustReviews moves reviews_count by delta. A missing meal is ignored since
// reviews are not validated against the catalog; other failures fall back to
// a recount.
func (l *EngagementLedger) adjustReviews(ctx context.Context, mealID primitive.ObjectID, delta int64) {
	err := l.meals.IncMealCounter(ctx, mealID, models.ReviewsCounter, delta)
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return
	}
	logrus.WithError(err).WithField("meal_id", mealID.Hex()).Warn("review counter update failed, recounting")
	if _, rerr := l.recount(ctx, mealID); rerr != nil {
		logrus.WithError(rerr).WithField("meal_id", mealID.Hex()).Error("review counter recount failed")
	}
}

// ReviewsForMeal lists a meal's reviews, newest first.
func (l *EngagementLedger) ReviewsForMeal(ctx context.Context, mealID string) ([]models.Review, error) {
	id, err := parseID(mealID, "meal")
	if err != nil {
		return nil, err
	}
	return l.listReviews(ctx, models.ReviewFilter{MealID: id})
}

// ReviewsByUser lists a user's reviews, newest first.
func (l *EngagementLedger) ReviewsByUser(ctx context.Context, email string) ([]models.Review, error) {
	if strings.TrimSpace(email) == "" {
		return nil, utils.ValidationError("Email is required")
	}
	return l.listReviews(ctx, models.ReviewFilter{Email: email})
}

// AllReviews lists every review, newest first.
func (l *EngagementLedger) AllReviews(ctx context.Context) ([]models.Review, error) {
	return l.listReviews(ctx, models.ReviewFilter{})
}

func (l *EngagementLedger) listReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	reviews, err := l.reviews.FindReviews(ctx, f)
	if err != nil {
		return nil, utils.StoreError("Failed to fetch reviews", err)
	}
	return reviews, nil
}

// Review fetches a single review.
func (l *EngagementLedger) Review(ctx context.Context, reviewID string) (*models.Review, error) {
	id, err := parseID(reviewID, "review")
	if err != nil {
		return nil, err
	}
	review, err := l.reviews.FindReview(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Review not found")
	}
	return review, nil
}

// EditReview replaces a review's text.
func (l *EngagementLedger) EditReview(ctx context.Context, reviewID, text string) error {
	id, err := parseID(reviewID, "review")
	if err != nil {
		return err
	}
	if err := l.reviews.UpdateReviewText(ctx, id, text); err != nil {
		return storeErr(err, "Review not found")
	}
	metrics.RecordReview("edit")
	return nil
}

// RemoveReview deletes a review and gives back its reviews_count slot.
func (l *EngagementLedger) RemoveReview(ctx context.Context, reviewID string) error {
	id, err := parseID(reviewID, "review")
	if err != nil {
		return err
	}
	review, err := l.reviews.FindReview(ctx, id)
	if err != nil {
		return storeErr(err, "Review not found")
	}
	if err := l.reviews.DeleteReview(ctx, id); err != nil {
		return storeErr(err, "Review not found")
	}
	l.adjustReviews(ctx, review.MealID, -1)
	metrics.RecordReview("remove")
	return nil
}

// Recount rebuilds a meal's counters from the ledgers.
func (l *EngagementLedger) Recount(ctx context.Context, mealID string) (*models.Meal, error) {
	id, err := parseID(mealID, "meal")
	if err != nil {
		return nil, err
	}
	meal, err := l.recount(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Meal not found")
	}
	return meal, nil
}

func (l *EngagementLedger) recount(ctx context.Context, id primitive.ObjectID) (*models.Meal, error) {
	likes, err := l.likes.CountLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := l.reviews.CountReviews(ctx, models.ReviewFilter{MealID: id})
	if err != nil {
		return nil, err
	}
	if err := l.meals.SetMealCounters(ctx, id, likes, reviews); err != nil {
		return nil, err
	}
	return l.meals.FindMeal(ctx, id)
}
