package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	service "github.com/okian/reelrank/internal/app"
	"github.com/okian/reelrank/pkg/logger"
)

const meanTolerance = 1e-9

// mismatches collects verification failures from concurrent checks.
type mismatches struct {
	mu   sync.Mutex
	errs []error
	n    int
}

func (m *mismatches) add(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	if len(m.errs) < maxReported {
		m.errs = append(m.errs, fmt.Errorf(format, args...))
	}
}

func (m *mismatches) err() error {
	if m.n == 0 {
		return nil
	}
	if m.n > len(m.errs) {
		m.errs = append(m.errs, fmt.Errorf("and %d more", m.n-len(m.errs)))
	}
	return errors.Join(m.errs...)
}

// verifyItems reloads every item and compares its aggregate and comment count
// with the plan: one live entry per rater, replaced values not counted twice.
func verifyItems(ctx context.Context, cfg Config, observer *service.Client, items []string, exp expectation, stats *Stats) error {
	var bad mismatches

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, itemID := range items {
		g.Go(func() error {
			snap, err := observer.LoadAggregate(gctx, itemID)
			if err != nil {
				return fmt.Errorf("load %s: %w", itemID, err)
			}
			want := exp.aggregate(itemID)
			if snap.Aggregate.Count != want.Count || math.Abs(snap.Aggregate.Mean-want.Mean) > meanTolerance {
				bad.add("item %s: got %+v, want %+v", itemID, snap.Aggregate, want)
			}
			if len(snap.Comments) != exp.comments[itemID] {
				bad.add("item %s: got %d comments, want %d", itemID, len(snap.Comments), exp.comments[itemID])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.ItemsVerified = len(items)
	cfg.Logger.Info(ctx, "items verified", logger.Int("items", len(items)))
	return bad.err()
}

// verifyRanking walks the whole ranking page by page and checks that every
// simulated author appears exactly once with the expected total, and that
// positions are consecutive and totals non-increasing.
func verifyRanking(ctx context.Context, cfg Config, observer *service.Client, exp expectation, stats *Stats) error {
	all, err := observer.FetchAll(ctx)
	if err != nil {
		return err
	}
	stats.StandingsRetrieved = len(all)

	var bad mismatches
	seen := make(map[string]int, len(exp.totals))
	prefix := fmt.Sprintf("sim-%s-", stats.RunID)
	for i, st := range all {
		if st.Position != i+1 {
			bad.add("%s at index %d has position %d", st.UserID, i, st.Position)
		}
		if i > 0 && st.TotalScore > all[i-1].TotalScore {
			bad.add("%s (%.0f) ranks below %s (%.0f)", st.UserID, st.TotalScore, all[i-1].UserID, all[i-1].TotalScore)
		}
		if !strings.HasPrefix(st.UserID, prefix) {
			continue
		}
		seen[st.UserID]++
		if want, ok := exp.totals[st.UserID]; ok && st.TotalScore != float64(want) {
			bad.add("%s: total %.0f, want %d", st.UserID, st.TotalScore, want)
		}
	}
	for user := range exp.totals {
		switch seen[user] {
		case 1:
		case 0:
			bad.add("%s missing from ranking", user)
		default:
			bad.add("%s appears %d times", user, seen[user])
		}
	}

	cfg.Logger.Info(ctx, "ranking verified",
		logger.Int("standings", len(all)),
		logger.Int("pageSize", cfg.PageSize),
	)
	return bad.err()
}
