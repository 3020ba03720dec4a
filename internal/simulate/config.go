// Package simulate drives many virtual users against an authority and checks
// that the synchronized views agree with what was submitted.
package simulate

import (
	"time"

	"github.com/okian/reelrank/pkg/logger"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultUsers          = 50
	DefaultItemsPerUser   = 2
	DefaultRatingsPerUser = 3
	DefaultWorkers        = 8
	DefaultPageSize       = 7
	DefaultTimeout        = 10 * time.Second

	PercentageMultiplier = 100
	// maxReported caps the mismatches listed in a verification error.
	maxReported = 10
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL        string        // Base URL of the authority
	Users          int           // Number of virtual users
	ItemsPerUser   int           // Items each user publishes
	RatingsPerUser int           // Distinct items each user rates
	Workers        int           // Number of concurrent workers
	PageSize       int           // Page size used when walking the ranking
	Timeout        time.Duration // HTTP request timeout
	Seed           uint64        // Seed for the rating plan; 0 picks one from the clock
	Logger         logger.Logger
}

func (c Config) withDefaults() Config {
	if c.Users < 1 {
		c.Users = DefaultUsers
	}
	if c.ItemsPerUser < 1 {
		c.ItemsPerUser = DefaultItemsPerUser
	}
	if c.RatingsPerUser < 1 {
		c.RatingsPerUser = DefaultRatingsPerUser
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return c
}

// Stats holds run statistics.
type Stats struct {
	RunID              string
	UsersCreated       int
	ItemsCreated       int
	ScoresSubmitted    int
	ScoresReplaced     int
	ScoresFailed       int
	CommentsSubmitted  int
	CommentsFailed     int
	ItemsVerified      int
	StandingsRetrieved int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
