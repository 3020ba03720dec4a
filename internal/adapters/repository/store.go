// Package repository holds the ranking stores used by the reference authority.
package repository

import (
	"context"

	"github.com/okian/reelrank/internal/domain/types"
)

// Store keeps per-user totals ordered by total DESC.
//
// Positions are 1-based and unique: every user occupies exactly one slot, so
// Range over consecutive windows of an unchanged store yields every user once.
type Store interface {
	// Add adds delta to userID's total, creating the user at 0 first if unknown.
	// Returns the new total.
	Add(ctx context.Context, userID string, delta float64) (float64, error)

	// Rank returns userID's position and total. Returns ErrNotFound if unknown.
	Rank(ctx context.Context, userID string) (types.Entry, error)

	// Range returns up to limit entries starting at the zero-based offset.
	// An offset at or past Count yields an empty slice.
	Range(ctx context.Context, offset, limit int) ([]types.Entry, error)

	// TopN returns the first n entries.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of ranked users.
	Count(ctx context.Context) int

	// Close releases background resources.
	Close() error
}
