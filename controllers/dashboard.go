package controllers

import (
	"net/http"
	"strings"

	"hostel-meals/services"
	"hostel-meals/utils"
)

// DashboardController serves the aggregation views.
type DashboardController struct {
	views *services.Views
	auth  *services.Authorizer
}

func NewDashboardController(views *services.Views, auth *services.Authorizer) *DashboardController {
	return &DashboardController{views: views, auth: auth}
}

// AdminStats totals meals, reviews, likes and requests (Admin only)
func (dc *DashboardController) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	stats, err := dc.views.AdminDashboard(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// UserStats reports ?email= (the caller when omitted).
func (dc *DashboardController) UserStats(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		email = p.Email
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := dc.auth.SelfOrAdmin(ctx, p, email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	stats, err := dc.views.UserDashboard(ctx, email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
