package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-meals/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store with the same uniqueness and join semantics
// as the MongoDB backend. It is meant for local runs and tests.
type Memory struct {
	mu       sync.RWMutex
	users    []models.User
	meals    []models.Meal
	upcoming []models.UpcomingMeal
	likes    []models.Like
	reviews  []models.Review
	requests []models.MealRequest
	payments []models.Payment
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Close(context.Context) error { return nil }

func matchesFold(s, query string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}

func ensureID(id *primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	return *id
}

// --- users ---

func (m *Memory) InsertUser(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, ErrDuplicate
		}
	}
	id := ensureID(&u.ID)
	m.users = append(m.users, *u)
	return id, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0)
	for _, u := range m.users {
		if matchesFold(u.Email, query) || matchesFold(u.Name, query) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Memory) SetUserRole(_ context.Context, id primitive.ObjectID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Role = role
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) SetUserBadge(_ context.Context, email, badge string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			m.users[i].Badge = badge
			return nil
		}
	}
	return ErrNotFound
}

// --- meals ---

func (m *Memory) InsertMeal(_ context.Context, meal *models.Meal) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meal.SourceUpcomingID != nil {
		for _, existing := range m.meals {
			if existing.SourceUpcomingID != nil && *existing.SourceUpcomingID == *meal.SourceUpcomingID {
				return primitive.NilObjectID, ErrDuplicate
			}
		}
	}
	id := ensureID(&meal.ID)
	m.meals = append(m.meals, *meal)
	return id, nil
}

func (m *Memory) FindMeal(_ context.Context, id primitive.ObjectID) (*models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.mealIndex(id); i >= 0 {
		found := m.meals[i]
		return &found, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) FindMealBySource(_ context.Context, upcomingID primitive.ObjectID) (*models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, meal := range m.meals {
		if meal.SourceUpcomingID != nil && *meal.SourceUpcomingID == upcomingID {
			found := meal
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) mealIndex(id primitive.ObjectID) int {
	for i := range m.meals {
		if m.meals[i].ID == id {
			return i
		}
	}
	return -1
}

func mealMatches(meal models.Meal, q models.MealQuery) bool {
	if q.Search != "" && !matchesFold(meal.Title, q.Search) {
		return false
	}
	if q.Category != "" && q.Category != "All" && meal.Category != q.Category {
		return false
	}
	if q.Email != "" && meal.Email != q.Email {
		return false
	}
	if q.MinPrice != nil && meal.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && meal.Price > *q.MaxPrice {
		return false
	}
	return true
}

func mealSortKey(meal models.Meal, field string) float64 {
	switch field {
	case "price":
		return meal.Price
	case "rating":
		return meal.Rating
	case "reviews_count":
		return float64(meal.ReviewsCount)
	case "postTime":
		return float64(meal.PostTime.UnixNano())
	default:
		return float64(meal.Likes)
	}
}

func (m *Memory) FindMeals(_ context.Context, q models.MealQuery) ([]models.Meal, int64, error) {
	m.mu.RLock()
	matched := make([]models.Meal, 0)
	for _, meal := range m.meals {
		if mealMatches(meal, q) {
			matched = append(matched, meal)
		}
	}
	m.mu.RUnlock()

	if q.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := mealSortKey(matched[i], q.SortBy), mealSortKey(matched[j], q.SortBy)
			if q.Asc {
				return a < b
			}
			return a > b
		})
	}
	total := int64(len(matched))
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.Limit
		if start > total {
			start = total
		}
		end := start + q.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *Memory) IncMealCounter(_ context.Context, id primitive.ObjectID, c models.Counter, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.mealIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	field := &m.meals[i].Likes
	if c == models.ReviewsCounter {
		field = &m.meals[i].ReviewsCount
	}
	if *field+delta < 0 {
		return nil
	}
	*field += delta
	return nil
}

func (m *Memory) SetMealCounters(_ context.Context, id primitive.ObjectID, likes, reviews int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.mealIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.meals[i].Likes = likes
	m.meals[i].ReviewsCount = reviews
	return nil
}

func (m *Memory) DeleteMeal(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.mealIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.meals = append(m.meals[:i], m.meals[i+1:]...)
	return nil
}

func (m *Memory) CountMeals(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.meals)), nil
}

func (m *Memory) SumMealLikes(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, meal := range m.meals {
		total += meal.Likes
	}
	return total, nil
}

// --- upcoming meals ---

func (m *Memory) InsertUpcoming(_ context.Context, meal *models.UpcomingMeal) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meal.LikedUsers == nil {
		meal.LikedUsers = []string{}
	}
	id := ensureID(&meal.ID)
	stored := *meal
	stored.LikedUsers = append([]string{}, meal.LikedUsers...)
	m.upcoming = append(m.upcoming, stored)
	return id, nil
}

func (m *Memory) upcomingIndex(id primitive.ObjectID) int {
	for i := range m.upcoming {
		if m.upcoming[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) FindUpcoming(_ context.Context, id primitive.ObjectID) (*models.UpcomingMeal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.upcomingIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := m.upcoming[i]
	found.LikedUsers = append([]string{}, found.LikedUsers...)
	return &found, nil
}

func (m *Memory) ListUpcoming(context.Context) ([]models.UpcomingMeal, error) {
	m.mu.RLock()
	out := make([]models.UpcomingMeal, len(m.upcoming))
	copy(out, m.upcoming)
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	return out, nil
}

func (m *Memory) AddUpcomingLike(_ context.Context, id primitive.ObjectID, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.upcomingIndex(id)
	if i < 0 {
		return false, ErrNotFound
	}
	for _, liked := range m.upcoming[i].LikedUsers {
		if liked == email {
			return false, nil
		}
	}
	m.upcoming[i].LikedUsers = append(m.upcoming[i].LikedUsers, email)
	m.upcoming[i].Likes++
	return true, nil
}

func (m *Memory) DeleteUpcoming(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.upcomingIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.upcoming = append(m.upcoming[:i], m.upcoming[i+1:]...)
	return nil
}

// --- likes ---

func (m *Memory) InsertLike(_ context.Context, l *models.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.likes {
		if existing.MealID == l.MealID && existing.UserEmail == l.UserEmail {
			return ErrDuplicate
		}
	}
	ensureID(&l.ID)
	m.likes = append(m.likes, *l)
	return nil
}

func (m *Memory) LikeExists(_ context.Context, mealID primitive.ObjectID, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.likes {
		if l.MealID == mealID && l.UserEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CountLikes(_ context.Context, mealID primitive.ObjectID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, l := range m.likes {
		if l.MealID == mealID {
			n++
		}
	}
	return n, nil
}

// --- reviews ---

func reviewMatches(r models.Review, f models.ReviewFilter) bool {
	if !f.MealID.IsZero() && r.MealID != f.MealID {
		return false
	}
	if f.Email != "" && r.Email != f.Email {
		return false
	}
	return true
}

func (m *Memory) InsertReview(_ context.Context, r *models.Review) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ensureID(&r.ID)
	m.reviews = append(m.reviews, *r)
	return id, nil
}

func (m *Memory) reviewIndex(id primitive.ObjectID) int {
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) FindReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.reviewIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := m.reviews[i]
	return &found, nil
}

func (m *Memory) FindReviews(_ context.Context, f models.ReviewFilter) ([]models.Review, error) {
	m.mu.RLock()
	out := make([]models.Review, 0)
	for _, r := range m.reviews {
		if reviewMatches(r, f) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (m *Memory) CountReviews(_ context.Context, f models.ReviewFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.reviews {
		if reviewMatches(r, f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpdateReviewText(_ context.Context, id primitive.ObjectID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.reviewIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.reviews[i].Review = text
	return nil
}

func (m *Memory) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.reviewIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
	return nil
}

// --- meal requests ---

func (m *Memory) InsertRequest(_ context.Context, r *models.MealRequest) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.MealID == r.MealID && existing.UserEmail == r.UserEmail {
			return primitive.NilObjectID, ErrDuplicate
		}
	}
	id := ensureID(&r.ID)
	m.requests = append(m.requests, *r)
	return id, nil
}

func (m *Memory) requestIndex(id primitive.ObjectID) int {
	for i := range m.requests {
		if m.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) FindRequest(_ context.Context, id primitive.ObjectID) (*models.MealRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.requestIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := m.requests[i]
	return &found, nil
}

func (m *Memory) MarkDelivered(_ context.Context, id primitive.ObjectID) (*models.MealRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.requestIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	m.requests[i].Status = models.RequestDelivered
	m.requests[i].DeliveredAt = &now
	updated := m.requests[i]
	return &updated, nil
}

func (m *Memory) DeleteRequest(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.requestIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.requests = append(m.requests[:i], m.requests[i+1:]...)
	return nil
}

func (m *Memory) RequestsWithMeals(_ context.Context, email string) ([]models.RequestView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RequestView, 0)
	for _, r := range m.requests {
		if r.UserEmail != email {
			continue
		}
		i := m.mealIndex(r.MealID)
		if i < 0 {
			continue
		}
		meal := m.meals[i]
		out = append(out, models.RequestView{
			ID:           r.ID,
			Status:       r.Status,
			RequestedAt:  r.RequestedAt,
			MealTitle:    meal.Title,
			Likes:        meal.Likes,
			ReviewsCount: meal.ReviewsCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (m *Memory) SearchRequests(_ context.Context, query string) ([]models.MealRequest, error) {
	m.mu.RLock()
	out := make([]models.MealRequest, 0)
	for _, r := range m.requests {
		if query == "" || matchesFold(r.UserEmail, query) || matchesFold(r.UserName, query) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (m *Memory) CountRequests(_ context.Context, email string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.requests {
		if email == "" || r.UserEmail == email {
			n++
		}
	}
	return n, nil
}

// --- payments ---

func (m *Memory) InsertPayment(_ context.Context, p *models.Payment) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ensureID(&p.ID)
	m.payments = append(m.payments, *p)
	return id, nil
}

func (m *Memory) FindPayments(_ context.Context, email string) ([]models.Payment, error) {
	m.mu.RLock()
	out := make([]models.Payment, 0)
	for _, p := range m.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *Memory) CountPayments(_ context.Context, email string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, p := range m.payments {
		if email == "" || p.Email == email {
			n++
		}
	}
	return n, nil
}

var _ Store = (*Memory)(nil)
