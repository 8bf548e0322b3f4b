package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IntentGateway creates a payment intent for an amount in dollars.
type IntentGateway interface {
	CreateIntent(ctx context.Context, price float64) (string, error)
}

// Payments fronts the payment provider and keeps the payment audit trail.
type Payments struct {
	gateway  IntentGateway
	payments store.PaymentStore
	now      func() time.Time
}

func NewPayments(gateway IntentGateway, payments store.PaymentStore) *Payments {
	return &Payments{gateway: gateway, payments: payments, now: time.Now}
}

// CreateIntent returns the provider's client secret.
func (p *Payments) CreateIntent(ctx context.Context, price float64) (string, error) {
	if price <= 0 {
		return "", utils.ValidationError("price must be greater than 0")
	}
	secret, err := p.gateway.CreateIntent(ctx, price)
	if errors.Is(err, utils.ErrPaymentsDisabled) {
		return "", utils.StoreError("Payments are not available", err)
	}
	if err != nil {
		return "", utils.StoreError("Failed to create payment intent", err)
	}
	return secret, nil
}

// Record stores a completed payment.
func (p *Payments) Record(ctx context.Context, payment models.Payment) (primitive.ObjectID, error) {
	payment.Email = strings.TrimSpace(payment.Email)
	if payment.Email == "" {
		return primitive.NilObjectID, utils.ValidationError("email is required")
	}
	if payment.Date.IsZero() {
		payment.Date = p.now().UTC()
	}
	payment.Badge = strings.ToLower(payment.Badge)
	id, err := p.payments.InsertPayment(ctx, &payment)
	if err != nil {
		return primitive.NilObjectID, utils.StoreError(internalError, err)
	}
	return id, nil
}

// History lists the user's payments, newest first.
func (p *Payments) History(ctx context.Context, email string) ([]models.Payment, error) {
	payments, err := p.payments.FindPayments(ctx, email)
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return payments, nil
}
