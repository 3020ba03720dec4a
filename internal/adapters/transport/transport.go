// Package transport talks to the remote authority over HTTP and maps failures
// onto the shared error taxonomy.
package transport

import (
	"context"

	"github.com/okian/reelrank/internal/domain/model"
)

//go:generate mockgen -destination=./mock/transport.go -package=mock -source=transport.go

// Interactions covers per-item scores and comments.
type Interactions interface {
	SubmitScore(ctx context.Context, itemID string, value int) (model.AggregateScore, error)
	ScoreAverage(ctx context.Context, itemID string) (model.AggregateScore, error)
	SubmitComment(ctx context.Context, itemID, text string) (model.Comment, error)
	Comments(ctx context.Context, itemID string) ([]model.Comment, error)
}

// Rankings covers the leaderboard reads.
type Rankings interface {
	Ranking(ctx context.Context, limit, offset int) (model.RankingPage, error)
	RankingSelf(ctx context.Context) (model.UserStanding, error)
	RankingUser(ctx context.Context, userID string) (model.UserStanding, error)
	RankingTop(ctx context.Context, limit int) ([]model.UserStanding, error)
}

// Accounts covers login and item publication.
type Accounts interface {
	Login(ctx context.Context, userID, displayName string) (model.LoginResponse, error)
	Logout(ctx context.Context) error
	CreateItem(ctx context.Context, req model.ItemRequest) (model.ContentItem, error)
	Item(ctx context.Context, itemID string) (model.ContentItem, error)
	Items(ctx context.Context, authorID string, limit, offset int) (model.ItemPage, error)
}
