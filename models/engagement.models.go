package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like is a ledger row. At most one exists per (MealID, UserEmail).
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MealID    primitive.ObjectID `bson:"mealId" json:"mealId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Time      time.Time          `bson:"time" json:"time"`
}

// LikeResult is returned by a like attempt; Modified is 0 when the like already existed.
type LikeResult struct {
	Liked    bool  `json:"liked"`
	Modified int64 `json:"modified"`
}

// Review is a free-text review of a meal. A user may review a meal many times.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MealID    primitive.ObjectID `bson:"mealId" json:"mealId"`
	MealTitle string             `bson:"mealTitle,omitempty" json:"mealTitle,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Review    string             `bson:"review" json:"review"`
	Time      time.Time          `bson:"time" json:"time"`
}

// ReviewFilter selects reviews; empty fields are ignored.
type ReviewFilter struct {
	MealID primitive.ObjectID
	Email  string
}
