// Package stats derives read-only summaries from the document: today's
// completion counts, the weekly completion series and pomodoro totals.
package stats

import (
	"time"

	"timekeep/internal/model"
)

// DeletedTaskLabel is shown when a pomodoro record references a task
// that has since been removed.
const DeletedTaskLabel = "(deleted task)"

// DayCompletion is one point of the weekly completion series.
type DayCompletion struct {
	Date    string // YYYY-MM-DD
	Done    int
	Total   int
	Percent int // 0-100, 0 when no tasks were due
}

// TodayStat returns the stored counters for today, if any.
func TodayStat(doc *model.Document) (model.DayStat, bool) {
	stat, ok := doc.DailyStats[model.Today()]
	return stat, ok
}

// WeeklyCompletion computes the completion rate for each of the last
// seven days (oldest first), based on tasks due that day.
func WeeklyCompletion(doc *model.Document, now time.Time) []DayCompletion {
	days := make([]DayCompletion, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		day := DayCompletion{Date: date}
		for j := range doc.Tasks {
			if doc.Tasks[j].DueDate != date {
				continue
			}
			day.Total++
			if doc.Tasks[j].Status == model.StatusDone {
				day.Done++
			}
		}
		if day.Total > 0 {
			day.Percent = day.Done * 100 / day.Total
		}
		days = append(days, day)
	}
	return days
}

// PomodoroSummary aggregates focus time per task title. Records whose
// task was deleted are grouped under DeletedTaskLabel rather than
// dropped; a dangling reference is not an error.
type PomodoroSummary struct {
	Sessions     int
	FocusSeconds int
	ByTask       map[string]int // task title -> focus seconds
}

// SummarizePomodoros walks the history and totals focus time.
func SummarizePomodoros(doc *model.Document) PomodoroSummary {
	summary := PomodoroSummary{ByTask: map[string]int{}}
	for _, rec := range doc.PomodoroHistory {
		if rec.Mode != model.ModeFocus {
			continue
		}
		summary.Sessions++
		summary.FocusSeconds += rec.Duration

		label := DeletedTaskLabel
		if rec.TaskID == "" {
			label = "(unassigned)"
		} else if task := doc.FindTask(rec.TaskID); task != nil {
			label = task.Title
		}
		summary.ByTask[label] += rec.Duration
	}
	return summary
}
