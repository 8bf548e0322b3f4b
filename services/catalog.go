package services

import (
	"context"
	"strings"
	"time"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var sortableMealFields = map[string]bool{
	"likes":         true,
	"price":         true,
	"rating":        true,
	"reviews_count": true,
	"postTime":      true,
}

// Catalog is the live meal catalog.
type Catalog struct {
	meals store.MealStore
	now   func() time.Time
}

func NewCatalog(meals store.MealStore) *Catalog {
	return &Catalog{meals: meals, now: time.Now}
}

// Create adds a meal. Counters and rating always start at zero.
func (c *Catalog) Create(ctx context.Context, details models.MealDetails) (primitive.ObjectID, error) {
	if strings.TrimSpace(details.Title) == "" {
		return primitive.NilObjectID, utils.ValidationError("title is required")
	}
	details.Rating = 0
	if details.PostTime.IsZero() {
		details.PostTime = c.now().UTC()
	}
	id, err := c.meals.InsertMeal(ctx, &models.Meal{MealDetails: details})
	if err != nil {
		return primitive.NilObjectID, utils.StoreError("Error creating meal", err)
	}
	return id, nil
}

func (c *Catalog) Get(ctx context.Context, mealID string) (*models.Meal, error) {
	id, err := parseID(mealID, "meal")
	if err != nil {
		return nil, err
	}
	meal, err := c.meals.FindMeal(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Meal not found")
	}
	return meal, nil
}

// Delete removes a meal. Its likes, reviews and requests stay behind; the
// request view drops requests whose meal is gone.
func (c *Catalog) Delete(ctx context.Context, mealID string) error {
	id, err := parseID(mealID, "meal")
	if err != nil {
		return err
	}
	if err := c.meals.DeleteMeal(ctx, id); err != nil {
		return storeErr(err, "Meal not found")
	}
	return nil
}

// Page lists one page of meals; a zero limit falls back to the default page size.
func (c *Catalog) Page(ctx context.Context, q models.MealQuery) ([]models.Meal, int64, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return c.find(ctx, q)
}

// All lists every meal matching q without paging.
func (c *Catalog) All(ctx context.Context, q models.MealQuery) ([]models.Meal, error) {
	q.Limit, q.Page = 0, 0
	meals, _, err := c.find(ctx, q)
	return meals, err
}

func (c *Catalog) find(ctx context.Context, q models.MealQuery) ([]models.Meal, int64, error) {
	if q.SortBy != "" && !sortableMealFields[q.SortBy] {
		return nil, 0, utils.ValidationError("Cannot sort by " + q.SortBy)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, 0, utils.ValidationError("minPrice must not exceed maxPrice")
	}
	meals, total, err := c.meals.FindMeals(ctx, q)
	if err != nil {
		return nil, 0, utils.StoreError("Error fetching meals", err)
	}
	return meals, total, nil
}
