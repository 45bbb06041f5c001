package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipvault/internal/ipc"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Browse the video library",
	}

	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryShowCommand(ctx))

	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LibraryList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Videos) == 0 {
					fmt.Fprintln(stdout, "Library is empty")
					return nil
				}
				fmt.Fprintln(stdout, renderVideoTable(resp.Videos))
				return nil
			})
		},
	}
}

func newLibraryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show a video with its clips and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LibraryShow(videoID)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				video := resp.Video

				fmt.Fprintf(stdout, "Title:      %s\n", video.Title)
				fmt.Fprintf(stdout, "Path:       %s\n", video.Path)
				fmt.Fprintf(stdout, "Duration:   %s\n", formatSeconds(video.DurationSeconds))
				fmt.Fprintf(stdout, "Size:       %s\n", formatBytes(video.SizeBytes))
				if video.SourceURL != "" {
					fmt.Fprintf(stdout, "Source:     %s\n", video.SourceURL)
				}
				if video.TranscriptPath != "" {
					fmt.Fprintf(stdout, "Transcript: %s\n", video.TranscriptPath)
				}
				if video.AnalysisPath != "" {
					fmt.Fprintf(stdout, "Analysis:   %s\n", video.AnalysisPath)
				}
				if video.Summary != "" {
					fmt.Fprintf(stdout, "Summary:    %s\n", video.Summary)
				}

				if len(resp.Tags) > 0 {
					people := tagNames(resp.Tags, "person")
					topics := tagNames(resp.Tags, "topic")
					if len(people) > 0 {
						fmt.Fprintf(stdout, "People:     %s\n", strings.Join(people, ", "))
					}
					if len(topics) > 0 {
						fmt.Fprintf(stdout, "Topics:     %s\n", strings.Join(topics, ", "))
					}
				}

				if len(resp.Clips) > 0 {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, renderClipTable(resp.Clips))
				}
				return nil
			})
		},
	}
}

func tagNames(tags []ipc.Tag, kind string) []string {
	var names []string
	for _, tag := range tags {
		if tag.Kind == kind {
			names = append(names, tag.Name)
		}
	}
	return names
}
