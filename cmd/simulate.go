package main

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/okian/reelrank/internal/simulate"
)

func newSimulateCmd(c *cli) *cobra.Command {
	var (
		users    int
		items    int
		ratings  int
		workers  int
		pageSize int
		seed     uint64
		embedded bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive many virtual users and verify the ranking",
		Long: "simulate logs in sim_users users, publishes sim_items_per_user items each, " +
			"rates and comments concurrently, then checks every aggregate and walks the whole ranking.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			baseURL := c.cfg.BaseURL

			if embedded {
				ln, err := net.Listen("tcp", "127.0.0.1:0")
				if err != nil {
					return err
				}
				srvCtx, stop := context.WithCancel(ctx)
				done := make(chan error, 1)
				go func() { done <- serve(srvCtx, c.cfg, c.log.Named("embedded"), ln) }()
				defer func() {
					stop()
					<-done
				}()
				baseURL = "http://" + ln.Addr().String()
			}

			stats, err := simulate.Run(ctx, simulate.Config{
				BaseURL:        baseURL,
				Users:          orDefault(users, c.cfg.SimUsers),
				ItemsPerUser:   orDefault(items, c.cfg.SimItemsPerUser),
				RatingsPerUser: ratings,
				Workers:        orDefault(workers, c.cfg.SimWorkers),
				PageSize:       orDefault(pageSize, c.cfg.SimPageSize),
				Timeout:        c.cfg.RequestTimeout(),
				Seed:           seed,
				Logger:         c.log.Named("simulate"),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"run %s: %d users, %d items, %d scores (%d replaced), %d comments, %d standings verified in %s\n",
				stats.RunID, stats.UsersCreated, stats.ItemsCreated, stats.ScoresSubmitted,
				stats.ScoresReplaced, stats.CommentsSubmitted, stats.StandingsRetrieved, stats.Duration)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 0, "virtual users (0 = sim_users)")
	cmd.Flags().IntVar(&items, "items", 0, "items per user (0 = sim_items_per_user)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (0 = sim_workers)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "ranking page size (0 = sim_page_size)")
	cmd.Flags().IntVar(&ratings, "ratings", simulate.DefaultRatingsPerUser, "distinct items each user rates")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "rating plan seed (0 = from clock)")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "run against an in-process authority")
	return cmd
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
