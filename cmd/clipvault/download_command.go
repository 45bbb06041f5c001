package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipvault/internal/ipc"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Queue a video download into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Download(args[0], title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued download %s\n", shortID(resp.TaskID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title override for the downloaded video")
	return cmd
}
