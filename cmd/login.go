package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/reelrank/internal/config"
)

func newLoginCmd(c *cli) *cobra.Command {
	var displayName string
	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Obtain an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			if err := client.Login(cmd.Context(), args[0], displayName); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "export %sUSER_ID=%s\n", config.EnvPrefix, args[0])
			_, _ = fmt.Fprintf(out, "export %sTOKEN=%s\n", config.EnvPrefix, client.Token())
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "name", "", "display name shown in the ranking")
	return cmd
}
