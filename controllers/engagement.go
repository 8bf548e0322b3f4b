package controllers

import (
	"context"
	"net/http"
	"strings"

	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// EngagementController handles likes and reviews.
type EngagementController struct {
	ledger *services.EngagementLedger
	auth   *services.Authorizer
}

func NewEngagementController(ledger *services.EngagementLedger, auth *services.Authorizer) *EngagementController {
	return &EngagementController{ledger: ledger, auth: auth}
}

type likeRequest struct {
	Email string `json:"email" validate:"required"`
}

type reviewRequest struct {
	MealID    string `json:"mealId" validate:"required"`
	MealTitle string `json:"mealTitle"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Review    string `json:"review"`
}

type reviewTextRequest struct {
	Review string `json:"review" validate:"required"`
}

// LikeMeal records a like; repeating it reports modified 0.
func (ec *EngagementController) LikeMeal(w http.ResponseWriter, r *http.Request) {
	var body likeRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	result, err := ec.ledger.Like(ctx, mux.Vars(r)["id"], body.Email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (ec *EngagementController) CheckLiked(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	liked, err := ec.ledger.CheckLiked(ctx, mux.Vars(r)["mealId"], r.URL.Query().Get("email"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (ec *EngagementController) LikeUpcoming(w http.ResponseWriter, r *http.Request) {
	var body likeRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	result, err := ec.ledger.LikeUpcoming(ctx, mux.Vars(r)["id"], body.Email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// AddReview stores a review and bumps the meal's reviews_count.
func (ec *EngagementController) AddReview(w http.ResponseWriter, r *http.Request) {
	var body reviewRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	review, err := ec.ledger.AddReview(ctx, services.ReviewInput{
		MealID:    body.MealID,
		MealTitle: body.MealTitle,
		Email:     body.Email,
		Name:      body.Name,
		Review:    body.Review,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"insertedId": review.ID,
		"review":     review,
	})
}

func (ec *EngagementController) AllReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	reviews, err := ec.ledger.AllReviews(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(reviews))
}

func (ec *EngagementController) ReviewsForMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	reviews, err := ec.ledger.ReviewsForMeal(ctx, mux.Vars(r)["mealId"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(reviews))
}

func (ec *EngagementController) MyReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	reviews, err := ec.ledger.ReviewsByUser(ctx, mux.Vars(r)["email"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(reviews))
}

// EditReview replaces the text of the caller's review. Admins may edit any.
func (ec *EngagementController) EditReview(w http.ResponseWriter, r *http.Request) {
	var body reviewTextRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	id := mux.Vars(r)["id"]
	if err := ec.authorOrAdmin(ctx, r, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := ec.ledger.EditReview(ctx, id, strings.TrimSpace(body.Review)); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"modifiedCount": 1})
}

// RemoveReview deletes the caller's review. Admins may delete any.
func (ec *EngagementController) RemoveReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	id := mux.Vars(r)["id"]
	if err := ec.authorOrAdmin(ctx, r, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := ec.ledger.RemoveReview(ctx, id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"deletedCount": 1})
}

func (ec *EngagementController) authorOrAdmin(ctx context.Context, r *http.Request, reviewID string) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	review, err := ec.ledger.Review(ctx, reviewID)
	if err != nil {
		return err
	}
	return ec.auth.SelfOrAdmin(ctx, p, review.Email)
}
