package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/config"
	"clipvault/internal/ipc"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import video files into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				paths = append(paths, expanded)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Import(paths)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Queued %d import batch(es)\n", len(resp.TaskIDs))
				for _, skipped := range resp.Skipped {
					fmt.Fprintf(stdout, "Skipped %s\n", skipped)
				}
				return nil
			})
		},
	}
}
