package controllers

import (
	"net/http"

	"hostel-meals/models"
	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// PaymentController handles badge purchases.
type PaymentController struct {
	payments *services.Payments
	auth     *services.Authorizer
}

func NewPaymentController(payments *services.Payments, auth *services.Authorizer) *PaymentController {
	return &PaymentController{payments: payments, auth: auth}
}

type intentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type paymentRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	TransactionID string  `json:"transactionId" validate:"required"`
	Badge         string  `json:"badge"`
}

// CreateIntent returns a client secret for the checkout form.
func (pc *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body intentRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	secret, err := pc.payments.CreateIntent(ctx, body.Price)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

// Record stores a completed payment for the caller.
func (pc *PaymentController) Record(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := pc.auth.SelfOrAdmin(ctx, p, body.Email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	id, err := pc.payments.Record(ctx, models.Payment{
		Email:         body.Email,
		Amount:        body.Amount,
		TransactionID: body.TransactionID,
		Badge:         body.Badge,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"insertedId": id})
}

func (pc *PaymentController) History(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := pc.auth.SelfOrAdmin(ctx, p, email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	payments, err := pc.payments.History(ctx, email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(payments))
}
