package models

// AdminStats are whole-collection totals for the admin dashboard.
type AdminStats struct {
	TotalMeals    int64 `json:"totalMeals"`
	TotalReviews  int64 `json:"totalReviews"`
	TotalLikes    int64 `json:"totalLikes"`
	TotalRequests int64 `json:"totalRequests"`
}

// UserStats are per-user totals for the user dashboard.
type UserStats struct {
	RequestedMeals int64  `json:"requestedMeals"`
	Reviews        int64  `json:"reviews"`
	Payments       int64  `json:"payments"`
	Badge          string `json:"badge"`
}
