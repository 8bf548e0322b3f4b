package controllers

import (
	"net/http"

	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// MealRequestController handles meal requests from premium users.
type MealRequestController struct {
	lifecycle *services.RequestLifecycle
	views     *services.Views
	auth      *services.Authorizer
}

func NewMealRequestController(lifecycle *services.RequestLifecycle, views *services.Views, auth *services.Authorizer) *MealRequestController {
	return &MealRequestController{lifecycle: lifecycle, views: views, auth: auth}
}

type mealRequestBody struct {
	MealID    string `json:"mealId" validate:"required"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	MealTitle string `json:"mealTitle"`
}

// CreateRequest files a pending request; bronze users are refused.
func (mc *MealRequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body mealRequestBody
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	id, err := mc.lifecycle.Create(ctx, services.RequestInput{
		MealID:    body.MealID,
		UserEmail: body.UserEmail,
		UserName:  body.UserName,
		MealTitle: body.MealTitle,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"insertedId": id})
}

// ListForUser returns the caller's requests joined with their meals.
func (mc *MealRequestController) ListForUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := mc.auth.SelfOrAdmin(ctx, p, email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	views, err := mc.views.RequestsForUser(ctx, email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(views))
}

// Deliver marks a request served and returns the updated document (Admin only)
func (mc *MealRequestController) Deliver(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	req, err := mc.lifecycle.Deliver(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, req)
}

// Cancel deletes a request in any status. Only its owner or an admin may.
func (mc *MealRequestController) Cancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	req, err := mc.lifecycle.Get(ctx, id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := mc.auth.SelfOrAdmin(ctx, p, req.UserEmail); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := mc.lifecycle.Cancel(ctx, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"deletedCount": 1})
}

// Search lists requests by user email or name (Admin only)
func (mc *MealRequestController) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	reqs, err := mc.lifecycle.Search(ctx, r.URL.Query().Get("search"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(reqs))
}
