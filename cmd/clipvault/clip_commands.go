package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipvault/internal/config"
	"clipvault/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var videoID int64
	var sourcePath string
	var startValue string
	var endValue string
	var outputName string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Queue a clip export from a library video or a source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseClipWindow(startValue, endValue)
			if err != nil {
				return err
			}
			source, err := resolveSourcePath(sourcePath)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export(ipc.ExportRequest{
					VideoID:      videoID,
					SourcePath:   source,
					StartSeconds: start,
					EndSeconds:   end,
					OutputName:   strings.TrimSpace(outputName),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued export %s (%s - %s)\n", shortID(resp.TaskID), formatSeconds(start), formatSeconds(end))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&videoID, "video", 0, "Library video ID to cut from")
	cmd.Flags().StringVar(&sourcePath, "source", "", "Source file path (alternative to --video)")
	cmd.Flags().StringVar(&startValue, "start", "", "Clip start (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&endValue, "end", "", "Clip end (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&outputName, "output", "", "Output file name override")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newOverwriteCommand(ctx *commandContext) *cobra.Command {
	var videoID int64
	var sourcePath string
	var startValue string
	var endValue string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "overwrite",
		Short: "Queue an in-place re-cut of an exported clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseClipWindow(startValue, endValue)
			if err != nil {
				return err
			}
			source, err := resolveSourcePath(sourcePath)
			if err != nil {
				return err
			}
			target, err := config.ExpandPath(strings.TrimSpace(outputPath))
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Overwrite(ipc.OverwriteRequest{
					VideoID:      videoID,
					SourcePath:   source,
					StartSeconds: start,
					EndSeconds:   end,
					OutputPath:   target,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued overwrite %s for %s\n", shortID(resp.TaskID), target)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&videoID, "video", 0, "Library video ID to cut from")
	cmd.Flags().StringVar(&sourcePath, "source", "", "Source file path (alternative to --video)")
	cmd.Flags().StringVar(&startValue, "start", "", "Clip start (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&endValue, "end", "", "Clip end (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Existing clip file to replace")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func parseClipWindow(startValue, endValue string) (float64, float64, error) {
	start, err := parseTimecode(startValue)
	if err != nil {
		return 0, 0, fmt.Errorf("parse --start: %w", err)
	}
	end, err := parseTimecode(endValue)
	if err != nil {
		return 0, 0, fmt.Errorf("parse --end: %w", err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("clip end %s must be after start %s", formatSeconds(end), formatSeconds(start))
	}
	return start, end, nil
}

func resolveSourcePath(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	return config.ExpandPath(trimmed)
}
