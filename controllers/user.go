package controllers

import (
	"net/http"

	"hostel-meals/services"
	"hostel-meals/utils"

	"github.com/gorilla/mux"
)

// UserController handles user-related requests
type UserController struct {
	accounts *services.Accounts
	auth     *services.Authorizer
}

// NewUserController creates a new UserController
func NewUserController(accounts *services.Accounts, auth *services.Authorizer) *UserController {
	return &UserController{accounts: accounts, auth: auth}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Photo    string `json:"photo"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type badgeRequest struct {
	Badge string `json:"badge" validate:"required"`
}

// Signup handles user registration
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	id, err := uc.accounts.Signup(ctx, services.SignupInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Photo:    body.Photo,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"insertedId": id})
}

// Login handles user login and returns a bearer token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	token, err := uc.accounts.Login(ctx, body.Email, body.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetUser returns a profile. Users may read their own, admins any.
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	p, err := principal(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := uc.auth.SelfOrAdmin(ctx, p, email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	user, err := uc.accounts.Get(ctx, email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (uc *UserController) GetRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	role, err := uc.accounts.Role(ctx, mux.Vars(r)["email"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"role": role})
}

// SearchUsers matches users by email or name (Admin only)
func (uc *UserController) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	users, err := uc.accounts.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list(users))
}

// SetRole changes a user's role (Admin only)
func (uc *UserController) SetRole(w http.ResponseWriter, r *http.Request) {
	var body roleRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := uc.accounts.SetRole(ctx, mux.Vars(r)["id"], body.Role); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Role updated")
}

// SetBadge changes a user's subscription tier (Admin only)
func (uc *UserController) SetBadge(w http.ResponseWriter, r *http.Request) {
	var body badgeRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := uc.accounts.SetBadge(ctx, mux.Vars(r)["email"], body.Badge); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Badge updated")
}
