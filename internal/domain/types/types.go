// Package types contains common types used across the application
package types

// Entry represents one row of the ranking store: a user and their total, at a 1-based rank.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}
