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
	"golang.org/x/crypto/bcrypt"
)

// Accounts manages user records and credentials.
type Accounts struct {
	users  store.UserStore
	tokens *TokenService
	now    func() time.Time
}

func NewAccounts(users store.UserStore, tokens *TokenService) *Accounts {
	return &Accounts{users: users, tokens: tokens, now: time.Now}
}

// SignupInput is a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Photo    string
}

// Signup creates a bronze-tier user account.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (primitive.ObjectID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return primitive.NilObjectID, utils.StoreError("Error hashing password", err)
	}
	user := &models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Password:  string(hashed),
		Photo:     in.Photo,
		Role:      models.RoleUser,
		Badge:     models.BadgeBronze,
		CreatedAt: a.now().UTC(),
	}
	id, err := a.users.InsertUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return primitive.NilObjectID, utils.Conflict("User already exists")
	}
	if err != nil {
		return primitive.NilObjectID, utils.StoreError("Error creating user", err)
	}
	return id, nil
}

// Login checks credentials and issues a bearer token.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", utils.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return "", utils.StoreError(internalError, err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", utils.Unauthenticated("Invalid email or password")
	}
	token, err := a.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return "", utils.StoreError("Error generating token", err)
	}
	return token, nil
}

func (a *Accounts) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

// Role returns the user's role, "user" when there is no such user.
func (a *Accounts) Role(ctx context.Context, email string) (string, error) {
	user, err := a.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.RoleUser, nil
	}
	if err != nil {
		return "", utils.StoreError(internalError, err)
	}
	if user.Role == "" {
		return models.RoleUser, nil
	}
	return user.Role, nil
}

func (a *Accounts) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.ValidationError("Search query required")
	}
	users, err := a.users.SearchUsers(ctx, query)
	if err != nil {
		return nil, utils.StoreError(internalError, err)
	}
	return users, nil
}

func (a *Accounts) SetRole(ctx context.Context, userID, role string) error {
	id, err := parseID(userID, "user")
	if err != nil {
		return err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return utils.ValidationError("role must be one of [user admin]")
	}
	if err := a.users.SetUserRole(ctx, id, role); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}

// SetBadge stores the badge lower-cased.
func (a *Accounts) SetBadge(ctx context.Context, email, badge string) error {
	badge = strings.ToLower(strings.TrimSpace(badge))
	if badge == "" {
		return utils.ValidationError("badge is required")
	}
	if err := a.users.SetUserBadge(ctx, email, badge); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}
