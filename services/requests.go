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

// Notifier is told about delivered requests. Failures are logged, never
// surfaced to the caller.
type Notifier interface {
	SendMealDeliveredEmail(req models.MealRequest) error
}

// RequestLifecycle moves meal requests through none -> pending -> delivered.
type RequestLifecycle struct {
	auth     *Authorizer
	requests store.RequestStore
	notifier Notifier
	now      func() time.Time
}

func NewRequestLifecycle(auth *Authorizer, requests store.RequestStore, notifier Notifier) *RequestLifecycle {
	return &RequestLifecycle{
		auth:     auth,
		requests: requests,
		notifier: notifier,
		now:      time.Now,
	}
}

// RequestInput is a new meal request.
type RequestInput struct {
	MealID    string
	UserEmail string
	UserName  string
	MealTitle string
}

// Create admits a premium user's first request for a meal.
func (rl *RequestLifecycle) Create(ctx context.Context, in RequestInput) (primitive.ObjectID, error) {
	mealID, err := parseID(in.MealID, "meal")
	if err != nil {
		return primitive.NilObjectID, err
	}
	email := strings.TrimSpace(in.UserEmail)
	if _, err := rl.auth.Authorize(ctx, email, PremiumOnly); err != nil {
		if utils.KindOf(err) == utils.KindForbidden {
			metrics.RecordMealRequest("denied")
		}
		return primitive.NilObjectID, err
	}

	req := &models.MealRequest{
		MealID:      mealID,
		UserEmail:   email,
		UserName:    in.UserName,
		MealTitle:   in.MealTitle,
		Status:      models.RequestPending,
		RequestedAt: rl.now().UTC(),
	}
	id, err := rl.requests.InsertRequest(ctx, req)
	if errors.Is(err, store.ErrDuplicate) {
		metrics.RecordMealRequest("duplicate")
		return primitive.NilObjectID, utils.Conflict("You have already requested this meal.")
	}
	if err != nil {
		return primitive.NilObjectID, utils.StoreError(internalError, err)
	}
	metrics.RecordMealRequest("created")
	return id, nil
}

// Deliver marks a request delivered whatever its current status and notifies
// the requester in the background.
func (rl *RequestLifecycle) Deliver(ctx context.Context, requestID string) (*models.MealRequest, error) {
	id, err := parseID(requestID, "request")
	if err != nil {
		return nil, err
	}
	req, err := rl.requests.MarkDelivered(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Meal request not found")
	}
	metrics.RecordMealRequest("delivered")

	if rl.notifier != nil {
		go func(req models.MealRequest) {
			if err := rl.notifier.SendMealDeliveredEmail(req); err != nil {
				logrus.WithError(err).WithField("request_id", req.ID.Hex()).Warn("failed to send delivery email")
			}
		}(*req)
	}
	return req, nil
}

// Get fetches a single request.
func (rl *RequestLifecycle) Get(ctx context.Context, requestID string) (*models.MealRequest, error) {
	id, err := parseID(requestID, "request")
	if err != nil {
		return nil, err
	}
	req, err := rl.requests.FindRequest(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Meal request not found")
	}
	return req, nil
}

// Cancel removes a request in any status.
func (rl *RequestLifecycle) Cancel(ctx context.Context, requestID string) error {
	id, err := parseID(requestID, "request")
	if err != nil {
		return err
	}
	if err := rl.requests.DeleteRequest(ctx, id); err != nil {
		return storeErr(err, "Meal request not found")
	}
	metrics.RecordMealRequest("cancelled")
	return nil
}

// Search lists requests whose user email or name contains query.
func (rl *RequestLifecycle) Search(ctx context.Context, query string) ([]models.MealRequest, error) {
	reqs, err := rl.requests.SearchRequests(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return reqs, nil
}
