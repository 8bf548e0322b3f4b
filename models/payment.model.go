package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is an audit record of a completed subscription purchase
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Amount        float64            `bson:"amount" json:"amount"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Badge         string             `bson:"badge,omitempty" json:"badge,omitempty"` // package purchased
	Date          time.Time          `bson:"date" json:"date"`
}
