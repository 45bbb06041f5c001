package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"clipvault/internal/ipc"
)

// renderTaskTable lays out queued tasks in queue order, preferring the error
// over the progress message in the detail column.
func renderTaskTable(tasks []ipc.Task) string {
	rows := make([]table.Row, 0, len(tasks))
	for _, task := range tasks {
		detail := task.Message
		if task.Error != "" {
			detail = task.Error
		}
		rows = append(rows, table.Row{
			shortID(task.ID),
			task.Kind,
			task.Status,
			fmt.Sprintf("%.0f%%", task.Progress),
			truncateText(detail, 60),
		})
	}
	return render(table.Row{"ID", "Kind", "Status", "Progress", "Detail"}, rows, 4)
}

// renderCountsTable summarizes queue counts, omitting zero rows. The second
// return is false when every count is zero.
func renderCountsTable(counts ipc.QueueCounts) (string, bool) {
	var rows []table.Row
	add := func(label string, count int) {
		if count > 0 {
			rows = append(rows, table.Row{label, count})
		}
	}
	add("pending", counts.Pending)
	add("processing", counts.Processing)
	add("completed", counts.Completed)
	add("failed", counts.Failed)
	if len(rows) == 0 {
		return "", false
	}
	return render(table.Row{"Status", "Count"}, rows, 2), true
}

func renderVideoTable(videos []ipc.Video) string {
	rows := make([]table.Row, 0, len(videos))
	for _, video := range videos {
		rows = append(rows, table.Row{
			video.ID,
			truncateText(video.Title, 48),
			formatSeconds(video.DurationSeconds),
			formatBytes(video.SizeBytes),
			yesNo(video.TranscriptPath != ""),
			yesNo(video.AnalysisPath != ""),
		})
	}
	return render(table.Row{"ID", "Title", "Duration", "Size", "Transcribed", "Analyzed"}, rows, 1, 3, 4)
}

func renderClipTable(clips []ipc.Clip) string {
	rows := make([]table.Row, 0, len(clips))
	for _, clip := range clips {
		rows = append(rows, table.Row{
			clip.ID,
			filepath.Base(clip.OutputPath),
			formatSeconds(clip.StartSeconds),
			formatSeconds(clip.EndSeconds),
			formatBytes(clip.SizeBytes),
		})
	}
	return render(table.Row{"Clip", "File", "Start", "End", "Size"}, rows, 1, 3, 4, 5)
}

// render applies the shared rounded style. rightCols are 1-based column
// numbers to right-align; headers stay left-aligned.
func render(header table.Row, rows []table.Row, rightCols ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)

	right := make(map[int]bool, len(rightCols))
	for _, col := range rightCols {
		right[col] = true
	}
	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		if right[i+1] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
