package simulate

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	service "github.com/okian/reelrank/internal/app"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/pkg/logger"
)

// vuser is one simulated user with its own client and cache.
type vuser struct {
	id     string
	client *service.Client
	items  []string
}

type counters struct {
	scoresSubmitted   atomic.Int64
	scoresReplaced    atomic.Int64
	scoresFailed      atomic.Int64
	commentsSubmitted atomic.Int64
	commentsFailed    atomic.Int64
}

// Run executes a complete simulation and verification.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	stats := &Stats{
		RunID:     uuid.NewString()[:8],
		StartTime: time.Now(),
	}

	log.Info(ctx, "starting simulation",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("itemsPerUser", cfg.ItemsPerUser),
		logger.Int("ratingsPerUser", cfg.RatingsPerUser),
		logger.Int("workers", cfg.Workers),
		logger.Uint64("seed", cfg.Seed),
	)

	// Step 1: Check authority health
	if err := checkHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("health check failed: %w", err)
	}

	// Step 2: Log users in and publish items
	users, err := setupUsers(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("user setup failed: %w", err)
	}

	ids := make([]string, 0, len(users))
	owners := make(map[string]string)
	var items []string
	for _, u := range users {
		ids = append(ids, u.id)
		for _, item := range u.items {
			owners[item] = u.id
			items = append(items, item)
		}
	}
	sort.Strings(items)

	// Step 3: Rate and comment concurrently
	plans, exp := buildPlan(cfg.Seed, ids, items, owners, cfg.RatingsPerUser)
	var c counters
	interact(ctx, cfg, users, plans, &c)
	stats.ScoresSubmitted = int(c.scoresSubmitted.Load())
	stats.ScoresReplaced = int(c.scoresReplaced.Load())
	stats.ScoresFailed = int(c.scoresFailed.Load())
	stats.CommentsSubmitted = int(c.commentsSubmitted.Load())
	stats.CommentsFailed = int(c.commentsFailed.Load())
	if stats.ScoresFailed > 0 || stats.CommentsFailed > 0 {
		return stats, fmt.Errorf("%d score and %d comment submissions failed", stats.ScoresFailed, stats.CommentsFailed)
	}

	// Step 4: Verify through a fresh observer
	observer, err := service.New(
		service.WithBaseURL(cfg.BaseURL),
		service.WithTimeout(cfg.Timeout),
		service.WithPageSize(cfg.PageSize),
		service.WithConcurrency(cfg.Workers),
		service.WithLogger(log.Named("observer")),
	)
	if err != nil {
		return stats, err
	}
	if err := verifyItems(ctx, cfg, observer, items, exp, stats); err != nil {
		return stats, fmt.Errorf("item verification failed: %w", err)
	}
	if err := verifyRanking(ctx, cfg, observer, exp, stats); err != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// checkHealth verifies the authority is serving.
func checkHealth(ctx context.Context, cfg Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := (&http.Client{Timeout: cfg.Timeout}).Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to authority: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authority health check failed with status: %d", resp.StatusCode)
	}
	cfg.Logger.Info(ctx, "authority is healthy")
	return nil
}

// setupUsers logs every virtual user in and publishes their items.
func setupUsers(ctx context.Context, cfg Config, stats *Stats) ([]*vuser, error) {
	users := make([]*vuser, cfg.Users)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range users {
		g.Go(func() error {
			id := fmt.Sprintf("sim-%s-%03d", stats.RunID, i)
			client, err := service.New(
				service.WithBaseURL(cfg.BaseURL),
				service.WithTimeout(cfg.Timeout),
			)
			if err != nil {
				return err
			}
			if err := client.Login(gctx, id, fmt.Sprintf("Sim User %d", i)); err != nil {
				return fmt.Errorf("login %s: %w", id, err)
			}
			u := &vuser{id: id, client: client}
			for j := 0; j < cfg.ItemsPerUser; j++ {
				item, err := client.CreateItem(gctx, model.ItemRequest{
					Title:    fmt.Sprintf("%s clip %d", id, j),
					MediaRef: fmt.Sprintf("media/%s/%d.mp4", id, j),
				})
				if err != nil {
					return fmt.Errorf("create item for %s: %w", id, err)
				}
				u.items = append(u.items, item.ID)
			}
			users[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.UsersCreated = len(users)
	stats.ItemsCreated = cfg.Users * cfg.ItemsPerUser
	cfg.Logger.Info(ctx, "users ready",
		logger.Int("users", stats.UsersCreated),
		logger.Int("items", stats.ItemsCreated),
	)
	return users, nil
}

// interact runs every user's plan on a bounded worker pool. A user's own
// submissions stay sequential so that the last planned value is the live one.
func interact(ctx context.Context, cfg Config, users []*vuser, plans map[string]userPlan, c *counters) {
	work := make(chan *vuser, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range work {
				runPlan(ctx, cfg.Logger, u, plans[u.id], c)
			}
		}()
	}

	go func() {
		defer close(work)
		for _, u := range users {
			select {
			case <-ctx.Done():
				return
			case work <- u:
			}
		}
	}()
	wg.Wait()
}

func runPlan(ctx context.Context, log logger.Logger, u *vuser, p userPlan, c *counters) {
	for _, r := range p.ratings {
		for i, v := range r.values {
			if _, err := u.client.SubmitScore(ctx, r.itemID, float64(v)); err != nil {
				c.scoresFailed.Add(1)
				log.Warn(ctx, "score submission failed",
					logger.String("user", u.id),
					logger.String("itemID", r.itemID),
					logger.Error(err),
				)
				continue
			}
			c.scoresSubmitted.Add(1)
			if i > 0 {
				c.scoresReplaced.Add(1)
			}
		}
	}
	if p.commentOn == "" {
		return
	}
	if _, err := u.client.SubmitComment(ctx, p.commentOn, p.comment); err != nil {
		c.commentsFailed.Add(1)
		log.Warn(ctx, "comment submission failed", logger.String("user", u.id), logger.Error(err))
		return
	}
	c.commentsSubmitted.Add(1)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var opsPerSecond float64
	if stats.Duration > 0 {
		opsPerSecond = float64(stats.ScoresSubmitted+stats.CommentsSubmitted) / stats.Duration.Seconds()
	}
	var replacedPct float64
	if stats.ScoresSubmitted > 0 {
		replacedPct = float64(stats.ScoresReplaced) / float64(stats.ScoresSubmitted) * PercentageMultiplier
	}

	log.Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("usersCreated", stats.UsersCreated),
		logger.Int("itemsCreated", stats.ItemsCreated),
		logger.Int("scoresSubmitted", stats.ScoresSubmitted),
		logger.Int("scoresReplaced", stats.ScoresReplaced),
		logger.Float64("replacedPercent", replacedPct),
		logger.Int("commentsSubmitted", stats.CommentsSubmitted),
		logger.Int("itemsVerified", stats.ItemsVerified),
		logger.Int("standingsRetrieved", stats.StandingsRetrieved),
		logger.Duration("duration", stats.Duration),
		logger.Float64("opsPerSecond", opsPerSecond),
	)
}
