package controllers

import (
	"net/http"

	"hostel-meals/models"
	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// UpcomingController handles staged meals and their publication.
type UpcomingController struct {
	publisher *services.Publisher
}

func NewUpcomingController(publisher *services.Publisher) *UpcomingController {
	return &UpcomingController{publisher: publisher}
}

// AddUpcoming stages a meal (Admin only)
func (uc *UpcomingController) AddUpcoming(w http.ResponseWriter, r *http.Request) {
	var details models.MealDetails
	if err := utils.DecodeJSON(r, &details); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	id, err := uc.publisher.AddUpcoming(ctx, details)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"insertedId": id})
}

func (uc *UpcomingController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	meals, err := uc.publisher.ListUpcoming(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(meals))
}

// Publish moves an upcoming meal into the catalog (Admin only)
func (uc *UpcomingController) Publish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	id, err := uc.publisher.Publish(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Meal published successfully",
		"insertedId": id,
	})
}
