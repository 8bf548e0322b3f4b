package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Counter names a denormalized counter kept on a Meal.
type Counter string

const (
	LikesCounter   Counter = "likes"
	ReviewsCounter Counter = "reviews_count"
)

// MealDetails holds the descriptive fields shared by live and upcoming meals.
type MealDetails struct {
	Title           string    `bson:"title" json:"title" validate:"required"`
	Category        string    `bson:"category" json:"category" validate:"required"`
	Image           string    `bson:"image,omitempty" json:"image,omitempty"`
	Ingredients     []string  `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64   `bson:"price" json:"price" validate:"gte=0"`
	DistributorName string    `bson:"distributorName,omitempty" json:"distributorName,omitempty"`
	Email           string    `bson:"email" json:"email" validate:"omitempty,email"` // distributor
	Rating          float64   `bson:"rating" json:"rating"`
	PostTime        time.Time `bson:"postTime" json:"postTime"`
}

// Meal is a published catalog entry. Likes and ReviewsCount are projections of
// the like and review ledgers and are only written by the ledger.
type Meal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MealDetails  `bson:",inline"`
	Likes        int64 `bson:"likes" json:"likes"`
	ReviewsCount int64 `bson:"reviews_count" json:"reviews_count"`

	// Set when the meal was promoted from the upcoming staging area.
	SourceUpcomingID *primitive.ObjectID `bson:"sourceUpcomingId,omitempty" json:"-"`
}

// UpcomingMeal is a staging record awaiting publication.
type UpcomingMeal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MealDetails `bson:",inline"`
	Likes       int64    `bson:"likes" json:"likes"`
	LikedUsers  []string `bson:"likedUsers" json:"likedUsers"`
}

// MealQuery describes a catalog listing. Zero values mean "no filter".
type MealQuery struct {
	Search   string
	Category string
	Email    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Asc      bool
	Page     int64 // 1-based
	Limit    int64
}
