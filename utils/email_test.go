package utils

import (
	"testing"

	"hostel-meals/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDisabledEmailServiceDropsMessages(t *testing.T) {
	es := NewEmailService("", "kitchen@x.com")
	err := es.SendMealDeliveredEmail(models.MealRequest{
		ID:        primitive.NewObjectID(),
		UserEmail: "g@x.com",
		UserName:  "G",
	})
	assert.NoError(t, err)
}
