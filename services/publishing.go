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

// Publisher stages upcoming meals and promotes them into the catalog.
type Publisher struct {
	meals    store.MealStore
	upcoming store.UpcomingStore
	now      func() time.Time
}

func NewPublisher(meals store.MealStore, upcoming store.UpcomingStore) *Publisher {
	return &Publisher{meals: meals, upcoming: upcoming, now: time.Now}
}

// AddUpcoming stages a meal with no likes.
func (p *Publisher) AddUpcoming(ctx context.Context, details models.MealDetails) (primitive.ObjectID, error) {
	if strings.TrimSpace(details.Title) == "" {
		return primitive.NilObjectID, utils.ValidationError("title is required")
	}
	if details.PostTime.IsZero() {
		details.PostTime = p.now().UTC()
	}
	details.Rating = 0
	meal := &models.UpcomingMeal{MealDetails: details, LikedUsers: []string{}}
	id, err := p.upcoming.InsertUpcoming(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, utils.StoreError(internalError, err)
	}
	return id, nil
}

// ListUpcoming returns staged meals, most liked first.
func (p *Publisher) ListUpcoming(ctx context.Context) ([]models.UpcomingMeal, error) {
	meals, err := p.upcoming.ListUpcoming(ctx)
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return meals, nil
}

// Publish copies an upcoming meal into the catalog under a fresh id and then
// deletes the staging record. The insert comes first so a failure leaves the
// draft in place; the new meal carries its source id, so a retry after a
// failed delete finds it instead of inserting a second copy. Counters start
// at zero because the ledgers hold no rows for the new id.
func (p *Publisher) Publish(ctx context.Context, upcomingID string) (primitive.ObjectID, error) {
	id, err := parseID(upcomingID, "upcoming meal")
	if err != nil {
		return primitive.NilObjectID, err
	}
	up, err := p.upcoming.FindUpcoming(ctx, id)
	if err != nil {
		return primitive.NilObjectID, storeErr(err, "Upcoming meal not found")
	}

	source := up.ID
	meal := &models.Meal{MealDetails: up.MealDetails, SourceUpcomingID: &source}
	if meal.PostTime.IsZero() {
		meal.PostTime = p.now().UTC()
	}
	mealID, err := p.meals.InsertMeal(ctx, meal)
	if errors.Is(err, store.ErrDuplicate) {
		existing, ferr := p.meals.FindMealBySource(ctx, source)
		if ferr != nil {
			metrics.RecordPublish("failed")
			return primitive.NilObjectID, utils.StoreError(internalError, ferr)
		}
		logrus.WithField("upcoming_id", source.Hex()).Info("resuming interrupted publish")
		mealID = existing.ID
	} else if err != nil {
		metrics.RecordPublish("failed")
		return primitive.NilObjectID, utils.StoreError(internalError, err)
	}

	if err := p.upcoming.DeleteUpcoming(ctx, source); err != nil && !errors.Is(err, store.ErrNotFound) {
		metrics.RecordPublish("failed")
		return primitive.NilObjectID, utils.StoreError(internalError, err)
	}
	metrics.RecordPublish("published")
	return mealID, nil
}
