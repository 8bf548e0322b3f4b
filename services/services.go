// Package services holds the engagement and fulfillment core: identity
// verification, authorization, the like/review ledger, the meal request
// lifecycle, publishing and the read-only aggregation views. Each service is
// built with the store interfaces it needs and knows nothing about HTTP.
package services

import (
	"errors"
	"strings"

	"hostel-meals/store"
	"hostel-meals/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const internalError = "Internal Server Error"

// parseID turns a hex id into an ObjectID, or a validation error naming what.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, utils.ValidationError("Invalid " + what + " ID")
	}
	return id, nil
}

// storeErr maps store.ErrNotFound to a NotFound with msg and anything else to
// a store failure.
func storeErr(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound(notFoundMsg)
	}
	return utils.StoreError(internalError, err)
}
