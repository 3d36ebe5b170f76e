// Package model defines the per-user application data aggregate and the
// session state that the sync engine persists and ships to the server.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task status values.
const (
	StatusTodo = "todo"
	StatusDone = "done"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Pomodoro modes.
const (
	ModeFocus = "focus"
	ModeBreak = "break"
)

// Default timer settings (minutes).
const (
	DefaultFocusMinutes = 25
	DefaultBreakMinutes = 5
)

// Document is the full per-user data aggregate and the unit of sync.
// Task order is the user's display order. PomodoroHistory is append-only.
type Document struct {
	Tasks           []Task             `json:"tasks"`
	PomodoroHistory []PomodoroRecord   `json:"pomodoroHistory"`
	Settings        Settings           `json:"settings"`
	DailyStats      map[string]DayStat `json:"dailyStats"`
}

// Task is a single todo item owned by the Document.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"` // YYYY-MM-DD or empty
	Priority    string    `json:"priority" validate:"oneof=low medium high"`
	Category    string    `json:"category"`
	Status      string    `json:"status" validate:"oneof=todo done"`
	Subtasks    []Subtask `json:"subtasks,omitempty"`
}

// Subtask is a checklist entry under a task.
type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// PomodoroRecord logs one finished focus or break phase. TaskID is a weak
// reference: the task may have been deleted since, and that is tolerated.
type PomodoroRecord struct {
	ID         string `json:"id"`
	TaskID     string `json:"taskId"`
	Mode       string `json:"mode"`
	Duration   int    `json:"duration"` // seconds
	FinishedAt string `json:"finishedAt"`
}

// Settings holds the pomodoro timer configuration.
type Settings struct {
	FocusMinutes int `json:"focusMinutes" validate:"gt=0"`
	BreakMinutes int `json:"breakMinutes" validate:"gt=0"`
}

// DayStat counts completed vs total tasks for one date. Done never
// exceeds Total.
type DayStat struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// DefaultDocument returns the shape a brand-new user starts with.
func DefaultDocument() *Document {
	return &Document{
		Tasks:           []Task{},
		PomodoroHistory: []PomodoroRecord{},
		Settings: Settings{
			FocusMinutes: DefaultFocusMinutes,
			BreakMinutes: DefaultBreakMinutes,
		},
		DailyStats: map[string]DayStat{},
	}
}

// MergeOntoDefaults decodes raw JSON over a default-shaped Document.
// Top-level fields present in the payload replace the default wholesale;
// absent fields keep their defaults. This mirrors a top-level spread, not
// a deep merge.
func MergeOntoDefaults(raw []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid document payload: %w", err)
	}

	doc := DefaultDocument()
	if v, ok := fields["tasks"]; ok {
		if err := json.Unmarshal(v, &doc.Tasks); err != nil {
			return nil, fmt.Errorf("invalid tasks field: %w", err)
		}
	}
	if v, ok := fields["pomodoroHistory"]; ok {
		if err := json.Unmarshal(v, &doc.PomodoroHistory); err != nil {
			return nil, fmt.Errorf("invalid pomodoroHistory field: %w", err)
		}
	}
	if v, ok := fields["settings"]; ok {
		settings := doc.Settings
		if err := json.Unmarshal(v, &settings); err != nil {
			return nil, fmt.Errorf("invalid settings field: %w", err)
		}
		doc.Settings = settings
	}
	if v, ok := fields["dailyStats"]; ok {
		if err := json.Unmarshal(v, &doc.DailyStats); err != nil {
			return nil, fmt.Errorf("invalid dailyStats field: %w", err)
		}
	}

	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	if doc.PomodoroHistory == nil {
		doc.PomodoroHistory = []PomodoroRecord{}
	}
	if doc.DailyStats == nil {
		doc.DailyStats = map[string]DayStat{}
	}

	return doc, nil
}

// Clone returns a deep copy of the document. The debounced writer sends
// clones so an in-flight upload never races a later edit.
func (d *Document) Clone() *Document {
	c := &Document{
		Tasks:           make([]Task, len(d.Tasks)),
		PomodoroHistory: make([]PomodoroRecord, len(d.PomodoroHistory)),
		Settings:        d.Settings,
		DailyStats:      make(map[string]DayStat, len(d.DailyStats)),
	}
	for i, t := range d.Tasks {
		c.Tasks[i] = t
		if len(t.Subtasks) > 0 {
			c.Tasks[i].Subtasks = append([]Subtask(nil), t.Subtasks...)
		}
	}
	copy(c.PomodoroHistory, d.PomodoroHistory)
	for k, v := range d.DailyStats {
		c.DailyStats[k] = v
	}
	return c
}

// FindTask returns the task with the given id, or nil.
func (d *Document) FindTask(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i]
		}
	}
	return nil
}

// NewID generates an opaque unique identifier with a short type prefix,
// e.g. "t_57ce1f..." for tasks.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Today returns the current date as an ISO date string.
func Today() string {
	return time.Now().Format("2006-01-02")
}
