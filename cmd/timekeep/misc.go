package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"timekeep/internal/operations"
	"timekeep/internal/stats"
	"timekeep/internal/timer"
)

func newTimerCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "timer [task]",
		Short: "Run a focus/break pomodoro timer",
		Long: `Run an interactive pomodoro timer. With a task argument, finished
focus sessions are recorded against that task.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := ""
			if len(args) > 0 {
				task, err := operations.FindTaskByTitle((*app).engine.Document(), args[0])
				if err != nil {
					return err
				}
				taskID = task.ID
			}
			return timer.Run((*app).engine, taskID)
		},
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	barDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barRest     = lipgloss.NewStyle().Faint(true)
)

func newStatsCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's completion, the weekly trend and focus totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := (*app).engine.Document()

			fmt.Println(headerStyle.Render("Today"))
			if stat, ok := stats.TodayStat(doc); ok {
				fmt.Printf("  %d of %d tasks done\n", stat.Done, stat.Total)
			} else {
				fmt.Println("  no tasks due today")
			}

			fmt.Println(headerStyle.Render("Last 7 days"))
			for _, day := range stats.WeeklyCompletion(doc, time.Now()) {
				fmt.Printf("  %s %s %3d%% (%d/%d)\n",
					day.Date, completionBar(day.Percent), day.Percent, day.Done, day.Total)
			}

			summary := stats.SummarizePomodoros(doc)
			fmt.Println(headerStyle.Render("Focus time"))
			fmt.Printf("  %d sessions, %s total\n",
				summary.Sessions, formatSeconds(summary.FocusSeconds))
			for title, seconds := range summary.ByTask {
				fmt.Printf("  %-30s %s\n", title, formatSeconds(seconds))
			}
			return nil
		},
	}
}

// completionBar renders a ten-cell bar for a 0-100 percentage.
func completionBar(percent int) string {
	filled := percent / 10
	return barDone.Render(strings.Repeat("█", filled)) +
		barRest.Render(strings.Repeat("░", 10-filled))
}

func formatSeconds(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func newSettingsCmd(app **App) *cobra.Command {
	var focus, brk int

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := (*app).engine.Document().Settings
			if !cmd.Flags().Changed("focus") && !cmd.Flags().Changed("break") {
				fmt.Printf("focus: %d minutes\nbreak: %d minutes\n",
					settings.FocusMinutes, settings.BreakMinutes)
				return nil
			}

			if !cmd.Flags().Changed("focus") {
				focus = settings.FocusMinutes
			}
			if !cmd.Flags().Changed("break") {
				brk = settings.BreakMinutes
			}
			if err := operations.UpdateSettings((*app).engine, focus, brk); err != nil {
				return err
			}
			fmt.Printf("focus: %d minutes\nbreak: %d minutes\n", focus, brk)
			return nil
		},
	}

	cmd.Flags().IntVar(&focus, "focus", 0, "focus session length in minutes")
	cmd.Flags().IntVar(&brk, "break", 0, "break length in minutes")
	return cmd
}

func newExportCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all data to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := operations.Export((*app).engine, args[0]); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace current data with a previously exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := operations.Import((*app).engine, args[0]); err != nil {
				return err
			}
			fmt.Println("Imported")
			return nil
		},
	}
}
