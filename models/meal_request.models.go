package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RequestPending   = "pending"
	RequestDelivered = "delivered"
)

// MealRequest is a premium user's request to be served a meal.
// At most one exists per (MealID, UserEmail), whatever its status.
type MealRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MealID      primitive.ObjectID `bson:"mealId" json:"mealId"`
	UserEmail   string             `bson:"userEmail" json:"userEmail"`
	UserName    string             `bson:"userName" json:"userName"`
	MealTitle   string             `bson:"mealTitle,omitempty" json:"mealTitle,omitempty"`
	Status      string             `bson:"status" json:"status"` // "pending" or "delivered"
	RequestedAt time.Time          `bson:"requestedAt" json:"requestedAt"`
	DeliveredAt *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// RequestView is a MealRequest joined with its meal's live counters.
type RequestView struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Status       string             `bson:"status" json:"status"`
	RequestedAt  time.Time          `bson:"requestedAt" json:"requestedAt"`
	MealTitle    string             `bson:"mealTitle" json:"mealTitle"`
	Likes        int64              `bson:"likes" json:"likes"`
	ReviewsCount int64              `bson:"reviews_count" json:"reviews_count"`
}
