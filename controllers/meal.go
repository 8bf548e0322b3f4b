package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hostel-meals/models"
	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// MealController handles the live catalog.
type MealController struct {
	catalog *services.Catalog
	ledger  *services.EngagementLedger
}

// NewMealController creates a new MealController
func NewMealController(catalog *services.Catalog, ledger *services.EngagementLedger) *MealController {
	return &MealController{catalog: catalog, ledger: ledger}
}

// CreateMeal handles adding a new meal (Admin only)
func (mc *MealController) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var details models.MealDetails
	if err := utils.DecodeJSON(r, &details); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	id, err := mc.catalog.Create(ctx, details)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"insertedId": id})
}

// GetMeal retrieves a single meal by ID
func (mc *MealController) GetMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	meal, err := mc.catalog.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, meal)
}

// DeleteMeal removes a meal from the catalog (Admin only)
func (mc *MealController) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := mc.catalog.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"deletedCount": 1})
}

// ListMeals returns one page of the catalog with the total match count.
func (mc *MealController) ListMeals(w http.ResponseWriter, r *http.Request) {
	q, err := parseMealQuery(r.URL.Query())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	meals, total, err := mc.catalog.Page(ctx, q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"meals": list(meals),
		"total": total,
	})
}

// AllMeals returns every meal, sorted by ?sortBy= (default likes) and ?order=.
func (mc *MealController) AllMeals(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q, err := parseMealQuery(values)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if q.SortBy == "" {
		q.SortBy = "likes"
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	meals, err := mc.catalog.All(ctx, q)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(meals))
}

// AdminMeals lists the meals added by one distributor (Admin only)
func (mc *MealController) AdminMeals(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		utils.WriteError(w, r, utils.ValidationError("Email is required"))
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	meals, err := mc.catalog.All(ctx, models.MealQuery{Email: email, SortBy: "postTime"})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(meals))
}

// RecountMeal rebuilds a meal's counters from the like and review ledgers (Admin only)
func (mc *MealController) RecountMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	meal, err := mc.ledger.Recount(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, meal)
}

func parseMealQuery(values url.Values) (models.MealQuery, error) {
	q := models.MealQuery{
		Search:   strings.TrimSpace(values.Get("search")),
		Category: strings.TrimSpace(values.Get("category")),
		SortBy:   values.Get("sortBy"),
		Asc:      strings.EqualFold(values.Get("order"), "asc"),
	}
	var err error
	if q.MinPrice, err = floatParam(values, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = floatParam(values, "maxPrice"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(values, "page"); err != nil {
		return q, err
	}
	limitKey := "limit"
	if values.Get(limitKey) == "" {
		limitKey = "size"
	}
	if q.Limit, err = intParam(values, limitKey); err != nil {
		return q, err
	}
	return q, nil
}

func floatParam(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, utils.ValidationError("Invalid " + key)
	}
	return &v, nil
}

func intParam(values url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, utils.ValidationError("Invalid " + key)
	}
	return v, nil
}
