package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/reelrank/internal/domain/model"
)

func newItemCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Create, inspect, rate and comment on items",
	}
	cmd.AddCommand(
		newItemCreateCmd(c),
		newItemListCmd(c),
		newItemShowCmd(c),
		newItemScoreCmd(c),
		newItemCommentCmd(c),
	)
	return cmd
}

func newItemCreateCmd(c *cli) *cobra.Command {
	var req model.ItemRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			item, err := client.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "item title")
	cmd.Flags().StringVar(&req.Description, "description", "", "item description")
	cmd.Flags().StringVar(&req.MediaRef, "media", "", "media reference")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newItemListCmd(c *cli) *cobra.Command {
	var (
		author string
		page   int
		size   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			if size == 0 {
				size = client.PageSize()
			}
			items, err := client.ListItems(cmd.Context(), author, page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "only items by this user")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default page_size)")
	return cmd
}

func newItemShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item's aggregate score and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			snap, err := client.LoadAggregate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newItemScoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "score <item-id> <1-5>",
		Short: "Rate an item; a second rating replaces the first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("score must be a number: %w", err)
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			agg, err := client.SubmitScore(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), agg)
		},
	}
}

func newItemCommentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <item-id> <text>",
		Short: "Comment on an item and print the refreshed comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			comments, err := client.SubmitComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), comments)
		},
	}
}
