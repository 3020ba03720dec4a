// Package model contains domain models passed between layers.
package model

import "time"

// Score bounds accepted by the authority.
const (
	MinScore = 1
	MaxScore = 5
)

// ContentItem is a published piece of media that users rate and comment on.
type ContentItem struct {
	ID          string    `json:"item_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaRef    string    `json:"media_ref,omitempty"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is an immutable note attached to an item.
type Comment struct {
	ID        string    `json:"comment_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreEntry is one author's rating of one item. Resubmission replaces it.
type ScoreEntry struct {
	AuthorID  string    `json:"author_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// AggregateScore is the authority's view of all live entries on an item.
// Mean is 0 when Count is 0.
type AggregateScore struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// UserStanding is a user's position in the ranking.
type UserStanding struct {
	UserID       string  `json:"user_id"`
	DisplayName  string  `json:"display_name,omitempty"`
	TotalScore   float64 `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	Publications int     `json:"publications"`
	Position     int     `json:"position"`
}

// ItemSnapshot is the last confirmed client-side view of an item.
type ItemSnapshot struct {
	ItemID    string         `json:"item_id"`
	Aggregate AggregateScore `json:"aggregate"`
	Comments  []Comment      `json:"comments"`
	// Viewer is the local author's last confirmed score, if any.
	Viewer   *ScoreEntry `json:"viewer,omitempty"`
	LoadedAt time.Time   `json:"loaded_at"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s ItemSnapshot) Clone() ItemSnapshot {
	out := s
	if s.Comments != nil {
		out.Comments = append([]Comment(nil), s.Comments...)
	}
	if s.Viewer != nil {
		v := *s.Viewer
		out.Viewer = &v
	}
	return out
}
