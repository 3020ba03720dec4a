package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRankingCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Read the user ranking",
	}
	cmd.AddCommand(
		newRankingPageCmd(c),
		newRankingMeCmd(c),
		newRankingUserCmd(c),
		newRankingTopCmd(c),
		newRankingAllCmd(c),
	)
	return cmd
}

func newRankingPageCmd(c *cli) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "page [n]",
		Short: "Show one ranking page (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("page must be an integer: %w", err)
				}
				n = v
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			if size == 0 {
				size = client.PageSize()
			}
			page, err := client.FetchPageSize(cmd.Context(), n, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "page size (default page_size)")
	return cmd
}

func newRankingMeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user's standing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			st, err := client.FetchSelf(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newRankingUserCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show another user's standing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			st, err := client.FetchUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newRankingTopCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the top of the ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			top, err := client.FetchTop(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), top)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of standings")
	return cmd
}

func newRankingAllCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Walk every ranking page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			all, err := client.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), all)
		},
	}
}
