package model

// Request and response bodies exchanged with the authority.

// ScoreRequest is the body of POST /scores/{itemID}.
type ScoreRequest struct {
	Value int `json:"value"`
}

// CommentRequest is the body of POST /comments/{itemID}.
type CommentRequest struct {
	Text string `json:"text"`
}

// ItemRequest is the body of POST /items.
type ItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MediaRef    string `json:"media_ref,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginResponse carries the bearer token issued on login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ItemPage is the body of GET /items.
type ItemPage struct {
	Items       []ContentItem `json:"items"`
	Total       int           `json:"total"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// RankingPage is the body of GET /ranking.
type RankingPage struct {
	Items       []UserStanding `json:"items"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}
