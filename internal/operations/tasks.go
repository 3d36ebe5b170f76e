// Package operations implements the application logic: task CRUD, timer
// settings and import/export. Every mutation goes through the sync
// engine's Commit so persistence stays consistent, and input validation
// happens here, before anything reaches the commit path.
package operations

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"timekeep/internal/model"
	"timekeep/internal/sync"
	"timekeep/internal/utils"
)

var validate = validator.New()

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Category    string
	Subtasks    []string
}

// AddTask validates the input, appends a new task and commits.
func AddTask(engine *sync.Engine, input TaskInput) (*model.Task, error) {
	task := model.Task{
		ID:          model.NewID("t"),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Category:    strings.TrimSpace(input.Category),
		Status:      model.StatusTodo,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	for _, line := range input.Subtasks {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		task.Subtasks = append(task.Subtasks, model.Subtask{
			ID:    model.NewID("st"),
			Title: line,
		})
	}

	if err := validateTask(&task); err != nil {
		return nil, err
	}

	doc := engine.Document()
	doc.Tasks = append(doc.Tasks, task)
	engine.Commit()
	return doc.FindTask(task.ID), nil
}

// UpdateTask applies the non-empty fields of input to an existing task
// and commits. The id and status are never touched here.
func UpdateTask(engine *sync.Engine, id string, input TaskInput) (*model.Task, error) {
	doc := engine.Document()
	task := doc.FindTask(id)
	if task == nil {
		return nil, utils.ErrTaskNotFound(id)
	}

	updated := *task
	if input.Title != "" {
		updated.Title = strings.TrimSpace(input.Title)
	}
	if input.Description != "" {
		updated.Description = strings.TrimSpace(input.Description)
	}
	if input.DueDate != "" {
		updated.DueDate = input.DueDate
	}
	if input.Priority != "" {
		updated.Priority = input.Priority
	}
	if input.Category != "" {
		updated.Category = strings.TrimSpace(input.Category)
	}

	if err := validateTask(&updated); err != nil {
		return nil, err
	}

	*task = updated
	engine.Commit()
	return task, nil
}

// DeleteTask removes a task by id and commits. Pomodoro records that
// reference it are left alone; their task reference is allowed to dangle.
func DeleteTask(engine *sync.Engine, id string) error {
	doc := engine.Document()
	idx := -1
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return utils.ErrTaskNotFound(id)
	}

	doc.Tasks = append(doc.Tasks[:idx], doc.Tasks[idx+1:]...)
	engine.Commit()
	return nil
}

// SetTaskDone flips a task's status and refreshes the daily stats for
// the task's due date, then commits once.
func SetTaskDone(engine *sync.Engine, id string, done bool) error {
	doc := engine.Document()
	task := doc.FindTask(id)
	if task == nil {
		return utils.ErrTaskNotFound(id)
	}

	if done {
		task.Status = model.StatusDone
	} else {
		task.Status = model.StatusTodo
	}

	date := task.DueDate
	if date == "" {
		date = model.Today()
	}
	RefreshDayStat(doc, date)

	engine.Commit()
	return nil
}

// SetSubtaskDone toggles a subtask checkbox and commits.
func SetSubtaskDone(engine *sync.Engine, taskID, subtaskID string, done bool) error {
	doc := engine.Document()
	task := doc.FindTask(taskID)
	if task == nil {
		return utils.ErrTaskNotFound(taskID)
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Done = done
			engine.Commit()
			return nil
		}
	}
	return fmt.Errorf("no subtask found matching '%s'", subtaskID)
}

// ReorderTasks rearranges the display order to follow orderedIDs.
// Unknown ids in the list are skipped; tasks not listed keep their
// previous relative order after the listed ones.
func ReorderTasks(engine *sync.Engine, orderedIDs []string) {
	doc := engine.Document()
	placed := make(map[string]bool, len(orderedIDs))
	next := make([]model.Task, 0, len(doc.Tasks))

	for _, id := range orderedIDs {
		if placed[id] {
			continue
		}
		if task := doc.FindTask(id); task != nil {
			placed[id] = true
			next = append(next, *task)
		}
	}
	for i := range doc.Tasks {
		if !placed[doc.Tasks[i].ID] {
			next = append(next, doc.Tasks[i])
		}
	}

	doc.Tasks = next
	engine.Commit()
}

// MoveTask moves a task to a new position in the display order
// (0-based, clamped to the list bounds) and commits.
func MoveTask(engine *sync.Engine, id string, position int) error {
	doc := engine.Document()
	from := -1
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return utils.ErrTaskNotFound(id)
	}

	if position < 0 {
		position = 0
	}
	if position >= len(doc.Tasks) {
		position = len(doc.Tasks) - 1
	}

	task := doc.Tasks[from]
	doc.Tasks = append(doc.Tasks[:from], doc.Tasks[from+1:]...)
	doc.Tasks = append(doc.Tasks[:position], append([]model.Task{task}, doc.Tasks[position:]...)...)
	engine.Commit()
	return nil
}

// RefreshDayStat recomputes the done/total counters for one date from
// the tasks due that day. Done can never exceed Total by construction.
func RefreshDayStat(doc *model.Document, date string) {
	total := 0
	done := 0
	for i := range doc.Tasks {
		if doc.Tasks[i].DueDate != date {
			continue
		}
		total++
		if doc.Tasks[i].Status == model.StatusDone {
			done++
		}
	}
	if doc.DailyStats == nil {
		doc.DailyStats = map[string]model.DayStat{}
	}
	doc.DailyStats[date] = model.DayStat{Done: done, Total: total}
}

// FindTaskByTitle resolves a task by id, exact title, or unique title
// prefix, in that order.
func FindTaskByTitle(doc *model.Document, search string) (*model.Task, error) {
	if task := doc.FindTask(search); task != nil {
		return task, nil
	}

	searchLower := strings.ToLower(search)
	var matches []*model.Task
	for i := range doc.Tasks {
		title := strings.ToLower(doc.Tasks[i].Title)
		if title == searchLower {
			return &doc.Tasks[i], nil
		}
		if strings.HasPrefix(title, searchLower) {
			matches = append(matches, &doc.Tasks[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, utils.ErrTaskNotFound(search)
	case 1:
		return matches[0], nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, m.Title)
		}
		sort.Strings(titles)
		return nil, fmt.Errorf("multiple tasks match '%s': %s", search, strings.Join(titles, ", "))
	}
}

func validateTask(task *model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return utils.ErrEmptyTitle()
	}
	if task.DueDate != "" {
		if _, err := time.Parse("2006-01-02", task.DueDate); err != nil {
			return utils.ErrInvalidDate(task.DueDate)
		}
	}
	if err := validate.Struct(task); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Priority" {
					return utils.ErrInvalidPriority(task.Priority)
				}
			}
		}
		return err
	}
	return nil
}
