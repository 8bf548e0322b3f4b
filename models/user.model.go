package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription tiers. Anything other than bronze counts as premium.
const (
	BadgeBronze   = "bronze"
	BadgeSilver   = "silver"
	BadgeGold     = "gold"
	BadgePlatinum = "platinum"
)

// User represents a user in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role      string             `bson:"role" json:"role"`   // "user" or "admin"
	Badge     string             `bson:"badge" json:"badge"` // "bronze", "silver", "gold", "platinum"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsBronze reports whether the badge is the lowest tier, ignoring case.
func IsBronze(badge string) bool {
	return strings.EqualFold(strings.TrimSpace(badge), BadgeBronze)
}
