package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"timekeep/internal/model"
	"timekeep/internal/sync"
	"timekeep/internal/utils"
)

// UpdateSettings validates and applies new timer minutes, then commits.
func UpdateSettings(engine *sync.Engine, focusMinutes, breakMinutes int) error {
	if focusMinutes <= 0 || breakMinutes <= 0 {
		return utils.ErrInvalidMinutes()
	}

	doc := engine.Document()
	doc.Settings.FocusMinutes = focusMinutes
	doc.Settings.BreakMinutes = breakMinutes
	engine.Commit()
	return nil
}

// RecordPomodoro appends a finished focus or break phase to the history
// and commits. taskID may reference a task that no longer exists.
func RecordPomodoro(engine *sync.Engine, taskID, mode string, duration time.Duration) {
	doc := engine.Document()
	doc.PomodoroHistory = append(doc.PomodoroHistory, model.PomodoroRecord{
		ID:         model.NewID("p"),
		TaskID:     taskID,
		Mode:       mode,
		Duration:   int(duration.Seconds()),
		FinishedAt: time.Now().Format(time.RFC3339),
	})
	engine.Commit()
}

// Export writes the whole document as indented JSON to path.
func Export(engine *sync.Engine, path string) error {
	data, err := json.MarshalIndent(engine.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize data: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// Import shallow-merges a JSON export onto the current document and
// commits. Fields absent from the file keep their current values.
func Import(engine *sync.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	imported, err := model.MergeOntoDefaults(data)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	doc := engine.Document()
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(data, &fields)
	if _, ok := fields["tasks"]; ok {
		doc.Tasks = imported.Tasks
	}
	if _, ok := fields["pomodoroHistory"]; ok {
		doc.PomodoroHistory = imported.PomodoroHistory
	}
	if _, ok := fields["settings"]; ok {
		doc.Settings = imported.Settings
	}
	if _, ok := fields["dailyStats"]; ok {
		doc.DailyStats = imported.DailyStats
	}
	engine.Commit()
	return nil
}
