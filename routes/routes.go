// routes/routes.go
package routes

import (
	"net/http"

	"hostel-meals/controllers"
	"hostel-meals/metrics"
	"hostel-meals/middleware"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// Controllers bundles the handlers mounted by RegisterRoutes.
type Controllers struct {
	Users        *controllers.UserController
	Meals        *controllers.MealController
	Engagement   *controllers.EngagementController
	MealRequests *controllers.MealRequestController
	Upcoming     *controllers.UpcomingController
	Dashboard    *controllers.DashboardController
	Payments     *controllers.PaymentController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, c Controllers) {
	router.Use(metrics.InstrumentHandler)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireAdmin(h))
	}

	// Ops
	router.HandleFunc("/health", health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Users
	router.HandleFunc("/users", c.Users.Signup).Methods("POST")
	router.HandleFunc("/login", c.Users.Login).Methods("POST")
	router.Handle("/users/search", admin(c.Users.SearchUsers)).Methods("GET")
	router.HandleFunc("/users/{email}/role", c.Users.GetRole).Methods("GET")
	router.Handle("/users/{id}/role", admin(c.Users.SetRole)).Methods("PATCH")
	router.Handle("/users/badge/{email}", admin(c.Users.SetBadge)).Methods("PATCH")
	router.Handle("/users/{email}", protected(c.Users.GetUser)).Methods("GET")

	// Meals
	router.Handle("/meals", admin(c.Meals.CreateMeal)).Methods("POST")
	router.HandleFunc("/meals", c.Meals.ListMeals).Methods("GET")
	router.HandleFunc("/allmeals", c.Meals.AllMeals).Methods("GET")
	router.HandleFunc("/meals/{id}", c.Meals.GetMeal).Methods("GET")
	router.Handle("/meals/{id}", admin(c.Meals.DeleteMeal)).Methods("DELETE")
	router.Handle("/admin/meals", admin(c.Meals.AdminMeals)).Methods("GET")
	router.Handle("/admin/meals/{id}/recount", admin(c.Meals.RecountMeal)).Methods("POST")

	// Likes and reviews
	router.HandleFunc("/meals/like/{id}", c.Engagement.LikeMeal).Methods("PATCH")
	router.HandleFunc("/likes/check/{mealId}", c.Engagement.CheckLiked).Methods("GET")
	router.HandleFunc("/reviews", c.Engagement.AddReview).Methods("POST")
	router.HandleFunc("/reviews", c.Engagement.AllReviews).Methods("GET")
	router.HandleFunc("/reviews/{mealId}", c.Engagement.ReviewsForMeal).Methods("GET")
	router.HandleFunc("/my-reviews/{email}", c.Engagement.MyReviews).Methods("GET")
	router.Handle("/reviews/{id}", protected(c.Engagement.EditReview)).Methods("PATCH")
	router.Handle("/reviews/{id}", protected(c.Engagement.RemoveReview)).Methods("DELETE")

	// Upcoming meals
	router.Handle("/upcoming-meals", admin(c.Upcoming.AddUpcoming)).Methods("POST")
	router.HandleFunc("/upcoming-meals", c.Upcoming.ListUpcoming).Methods("GET")
	router.HandleFunc("/upcoming-meals/like/{id}", c.Engagement.LikeUpcoming).Methods("PATCH")
	router.Handle("/publish-meal/{id}", admin(c.Upcoming.Publish)).Methods("POST")

	// Meal requests
	router.HandleFunc("/meal-requests", c.MealRequests.CreateRequest).Methods("POST")
	router.Handle("/meal-requests/{email}", protected(c.MealRequests.ListForUser)).Methods("GET")
	router.Handle("/meal-requests/{id}", protected(c.MealRequests.Cancel)).Methods("DELETE")
	router.Handle("/meal-requests/{id}/deliver", admin(c.MealRequests.Deliver)).Methods("PATCH")
	router.Handle("/admin/meal-requests", admin(c.MealRequests.Search)).Methods("GET")

	// Dashboards
	router.Handle("/admin/dashboard-stats", admin(c.Dashboard.AdminStats)).Methods("GET")
	router.Handle("/user/dashboard-stats", protected(c.Dashboard.UserStats)).Methods("GET")

	// Payments
	router.Handle("/create-payment-intent", protected(c.Payments.CreateIntent)).Methods("POST")
	router.Handle("/payments", protected(c.Payments.Record)).Methods("POST")
	router.Handle("/payments/{email}", protected(c.Payments.History)).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"alive": true})
}
