package models

import "time"

// Account represents a monitored external social-media identity
type Account struct {
	ID             string    `json:"id" db:"id"`
	TwitterHandle  string    `json:"twitter_handle" db:"twitter_handle"`
	TwitterUserID  string    `json:"twitter_user_id" db:"twitter_user_id"`
	Name           string    `json:"name" db:"name"`
	Category       Category  `json:"category" db:"category"`
	Bio            string    `json:"bio" db:"bio"`
	FollowersCount int       `json:"followers_count" db:"followers_count"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	AddedAt        time.Time `json:"added_at" db:"added_at"`
}

// TwitterUser is the result of an external account lookup.
// When credentials are missing or the API errors, a mock sentinel is
// returned instead of an error, with APIError carrying the diagnostic.
type TwitterUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	FollowersCount int    `json:"followers_count"`
	IsMock         bool   `json:"is_mock"`
	APIError       string `json:"api_error,omitempty"`
}

// AccountClassification is the AI category decision for an account bio
type AccountClassification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}
