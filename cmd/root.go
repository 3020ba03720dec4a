package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/reelrank/internal/app"
	"github.com/okian/reelrank/internal/config"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfgFile string
	baseURL string
	token   string
	userID  string

	cfg *config.Config
	log logger.Logger
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "reelrank",
		Short:         "Scores, comments and rankings for shared clips",
		Long:          "reelrank runs the ranking authority and talks to it as a client.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.ErrOrStderr())
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (overrides "+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&c.baseURL, "url", "", "authority base URL (overrides base_url)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "access token (overrides token)")
	root.PersistentFlags().StringVar(&c.userID, "user", "", "user id bound to the token (overrides user_id)")

	root.AddCommand(
		newServeCmd(c),
		newLoginCmd(c),
		newItemCmd(c),
		newRankingCmd(c),
		newSimulateCmd(c),
	)
	return root
}

// init loads configuration (defaults -> optional file -> env -> flags) and logging.
func (c *cli) init(stderr io.Writer) error {
	if c.cfgFile != "" {
		if err := os.Setenv(config.EnvConfigPath, c.cfgFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.token != "" {
		cfg.Token = c.token
	}
	if c.userID != "" {
		cfg.UserID = c.userID
	}
	c.cfg = cfg
	metrics.SetEnabled(cfg.MetricsEnabled)

	if err := logger.InitWithWriter(stderr, cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.log = logger.Get()
	return nil
}

// client builds a service client from the loaded configuration.
func (c *cli) client() (*service.Client, error) {
	return service.New(
		service.WithConfig(c.cfg),
		service.WithLogger(c.log.Named("client")),
	)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
