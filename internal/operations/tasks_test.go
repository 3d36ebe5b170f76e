package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"timekeep/internal/api"
	"timekeep/internal/localstore"
	"timekeep/internal/model"
	"timekeep/internal/sync"
)

// nullRemote satisfies sync.Remote; these tests never go online.
type nullRemote struct{}

func (nullRemote) Login(ctx context.Context, email, password string) (*api.Session, error) {
	return nil, nil
}
func (nullRemote) Register(ctx context.Context, name, email, password string) (*api.Session, error) {
	return nil, nil
}
func (nullRemote) FetchDocument(ctx context.Context, token string) ([]byte, error) {
	return []byte(`{}`), nil
}
func (nullRemote) PushDocument(ctx context.Context, token string, doc *model.Document) error {
	return nil
}
func (nullRemote) UpdateName(ctx context.Context, token, name string) (*model.User, error) {
	return nil, nil
}
func (nullRemote) UpdatePassword(ctx context.Context, token, password string) error { return nil }
func (nullRemote) DeleteAccount(ctx context.Context, token string) error            { return nil }

func newTestEngine(t *testing.T) *sync.Engine {
	t.Helper()
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine, err := sync.New(sync.Options{
		Store:          store,
		Remote:         nullRemote{},
		Notify:         func(string) {},
		DisableKeyring: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	engine.Resolve(context.Background())
	return engine
}

func TestAddTask(t *testing.T) {
	engine := newTestEngine(t)

	task, err := AddTask(engine, TaskInput{
		Title:    "  write report  ",
		DueDate:  "2026-09-01",
		Subtasks: []string{"outline", "", "draft"},
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if task.Title != "write report" {
		t.Errorf("title not trimmed: %q", task.Title)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("default priority = %q, want medium", task.Priority)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if len(task.Subtasks) != 2 {
		t.Errorf("blank subtask lines not skipped: %+v", task.Subtasks)
	}
	if task.ID == "" {
		t.Error("missing id")
	}
}

func TestAddTaskValidation(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		input TaskInput
	}{
		{"empty title", TaskInput{Title: "   "}},
		{"bad priority", TaskInput{Title: "x", Priority: "urgent"}},
		{"bad date", TaskInput{Title: "x", DueDate: "tomorrow"}},
		{"impossible date", TaskInput{Title: "x", DueDate: "2026-13-40"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AddTask(engine, tt.input); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
	if len(engine.Document().Tasks) != 0 {
		t.Error("rejected input still reached the document")
	}
}

func TestUpdateTaskAppliesNonEmptyFields(t *testing.T) {
	engine := newTestEngine(t)
	task, err := AddTask(engine, TaskInput{Title: "original", Category: "home"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := UpdateTask(engine, task.ID, TaskInput{Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Priority != model.PriorityHigh {
		t.Errorf("priority = %q", updated.Priority)
	}
	if updated.Title != "original" || updated.Category != "home" {
		t.Errorf("empty input fields clobbered existing values: %+v", updated)
	}

	// Invalid input leaves the task untouched.
	if _, err := UpdateTask(engine, task.ID, TaskInput{DueDate: "nope"}); err == nil {
		t.Fatal("expected a validation error")
	}
	if engine.Document().FindTask(task.ID).DueDate != "" {
		t.Error("failed update partially applied")
	}

	if _, err := UpdateTask(engine, "t_missing", TaskInput{Title: "x"}); err == nil {
		t.Error("expected not-found error")
	}
}

func TestDeleteTaskLeavesPomodoroHistory(t *testing.T) {
	engine := newTestEngine(t)
	task, err := AddTask(engine, TaskInput{Title: "doomed"})
	if err != nil {
		t.Fatal(err)
	}
	RecordPomodoro(engine, task.ID, model.ModeFocus, 25*time.Minute)

	if err := DeleteTask(engine, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	doc := engine.Document()
	if len(doc.Tasks) != 0 {
		t.Error("task not removed")
	}
	if len(doc.PomodoroHistory) != 1 || doc.PomodoroHistory[0].TaskID != task.ID {
		t.Error("pomodoro record should keep its dangling task reference")
	}

	if err := DeleteTask(engine, task.ID); err == nil {
		t.Error("expected not-found on second delete")
	}
}

func TestSetTaskDoneUpdatesDayStats(t *testing.T) {
	engine := newTestEngine(t)
	task, err := AddTask(engine, TaskInput{Title: "due dated", DueDate: "2026-06-01"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AddTask(engine, TaskInput{Title: "same day", DueDate: "2026-06-01"}); err != nil {
		t.Fatal(err)
	}

	if err := SetTaskDone(engine, task.ID, true); err != nil {
		t.Fatal(err)
	}
	doc := engine.Document()
	if got := doc.DailyStats["2026-06-01"]; got != (model.DayStat{Done: 1, Total: 2}) {
		t.Errorf("dailyStats = %+v", got)
	}

	if err := SetTaskDone(engine, task.ID, false); err != nil {
		t.Fatal(err)
	}
	if got := doc.DailyStats["2026-06-01"]; got != (model.DayStat{Done: 0, Total: 2}) {
		t.Errorf("dailyStats after undo = %+v", got)
	}
}

func TestSetTaskDoneWithoutDueDateUsesToday(t *testing.T) {
	engine := newTestEngine(t)
	task, err := AddTask(engine, TaskInput{Title: "undated"})
	if err != nil {
		t.Fatal(err)
	}
	if err := SetTaskDone(engine, task.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, ok := engine.Document().DailyStats[model.Today()]; !ok {
		t.Error("no stat recorded for today")
	}
}

func TestRefreshDayStatInvariant(t *testing.T) {
	doc := model.DefaultDocument()
	doc.Tasks = []model.Task{
		{ID: "a", Title: "a", DueDate: "2026-01-01", Status: model.StatusDone},
		{ID: "b", Title: "b", DueDate: "2026-01-01", Status: model.StatusDone},
		{ID: "c", Title: "c", DueDate: "2026-01-01", Status: model.StatusTodo},
		{ID: "d", Title: "d", DueDate: "2026-01-02", Status: model.StatusDone},
	}
	RefreshDayStat(doc, "2026-01-01")

	stat := doc.DailyStats["2026-01-01"]
	if stat != (model.DayStat{Done: 2, Total: 3}) {
		t.Errorf("stat = %+v", stat)
	}
	if stat.Done > stat.Total {
		t.Error("done exceeds total")
	}
}

func taskIDs(doc *model.Document) []string {
	ids := make([]string, len(doc.Tasks))
	for i := range doc.Tasks {
		ids[i] = doc.Tasks[i].ID
	}
	return ids
}

func TestReorderTasks(t *testing.T) {
	engine := newTestEngine(t)
	a, _ := AddTask(engine, TaskInput{Title: "first"})
	b, _ := AddTask(engine, TaskInput{Title: "second"})
	c, _ := AddTask(engine, TaskInput{Title: "third"})

	// Unknown ids are skipped; unlisted tasks keep their relative order
	// after the listed ones.
	ReorderTasks(engine, []string{c.ID, "t_missing", a.ID})

	got := taskIDs(engine.Document())
	want := []string{c.ID, a.ID, b.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMoveTask(t *testing.T) {
	engine := newTestEngine(t)
	a, _ := AddTask(engine, TaskInput{Title: "first"})
	b, _ := AddTask(engine, TaskInput{Title: "second"})
	c, _ := AddTask(engine, TaskInput{Title: "third"})

	if err := MoveTask(engine, c.ID, 0); err != nil {
		t.Fatal(err)
	}
	if got := taskIDs(engine.Document()); got[0] != c.ID || got[1] != a.ID || got[2] != b.ID {
		t.Errorf("order after move to front = %v", got)
	}

	// Positions past the end clamp to the last slot.
	if err := MoveTask(engine, c.ID, 99); err != nil {
		t.Fatal(err)
	}
	if got := taskIDs(engine.Document()); got[2] != c.ID {
		t.Errorf("order after clamped move = %v", got)
	}

	if err := MoveTask(engine, "t_missing", 0); err == nil {
		t.Error("expected not-found error")
	}
}

func TestReorderSurvivesReload(t *testing.T) {
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine, err := sync.New(sync.Options{
		Store:          store,
		Remote:         nullRemote{},
		Notify:         func(string) {},
		DisableKeyring: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	engine.Resolve(context.Background())

	a, _ := AddTask(engine, TaskInput{Title: "first"})
	b, _ := AddTask(engine, TaskInput{Title: "second"})
	ReorderTasks(engine, []string{b.ID, a.ID})

	loaded, ok := store.LoadGuest()
	if !ok {
		t.Fatal("guest slot absent after reorder")
	}
	if loaded.Tasks[0].ID != b.ID || loaded.Tasks[1].ID != a.ID {
		t.Errorf("persisted order = %v", taskIDs(loaded))
	}
}

func TestSetSubtaskDone(t *testing.T) {
	engine := newTestEngine(t)
	task, err := AddTask(engine, TaskInput{Title: "parent", Subtasks: []string{"child"}})
	if err != nil {
		t.Fatal(err)
	}

	if err := SetSubtaskDone(engine, task.ID, task.Subtasks[0].ID, true); err != nil {
		t.Fatal(err)
	}
	if !engine.Document().FindTask(task.ID).Subtasks[0].Done {
		t.Error("subtask not marked done")
	}
	if err := SetSubtaskDone(engine, task.ID, "st_missing", true); err == nil {
		t.Error("expected an error for a missing subtask")
	}
}

func TestFindTaskByTitle(t *testing.T) {
	engine := newTestEngine(t)
	a, _ := AddTask(engine, TaskInput{Title: "buy milk"})
	b, _ := AddTask(engine, TaskInput{Title: "buy bread"})
	c, _ := AddTask(engine, TaskInput{Title: "call mom"})

	doc := engine.Document()

	tests := []struct {
		name    string
		search  string
		wantID  string
		wantErr bool
	}{
		{"by id", b.ID, b.ID, false},
		{"exact title", "call mom", c.ID, false},
		{"unique prefix", "call", c.ID, false},
		{"case insensitive", "BUY MILK", a.ID, false},
		{"ambiguous prefix", "buy", "", true},
		{"no match", "xyzzy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := FindTaskByTitle(doc, tt.search)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.ID != tt.wantID {
				t.Errorf("found %q, want %q", task.ID, tt.wantID)
			}
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	engine := newTestEngine(t)

	if err := UpdateSettings(engine, 50, 10); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	settings := engine.Document().Settings
	if settings.FocusMinutes != 50 || settings.BreakMinutes != 10 {
		t.Errorf("settings = %+v", settings)
	}

	for _, bad := range [][2]int{{0, 5}, {25, 0}, {-1, 5}} {
		if err := UpdateSettings(engine, bad[0], bad[1]); err == nil {
			t.Errorf("UpdateSettings(%d, %d) accepted invalid minutes", bad[0], bad[1])
		}
	}
	if engine.Document().Settings.FocusMinutes != 50 {
		t.Error("rejected settings partially applied")
	}
}

func TestExportImportRoundtrip(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := AddTask(engine, TaskInput{Title: "exported"}); err != nil {
		t.Fatal(err)
	}
	if err := UpdateSettings(engine, 45, 15); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Export(engine, path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	fresh := newTestEngine(t)
	if err := Import(fresh, path); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	doc := fresh.Document()
	if len(doc.Tasks) != 1 || doc.Tasks[0].Title != "exported" {
		t.Errorf("tasks did not survive the roundtrip: %+v", doc.Tasks)
	}
	if doc.Settings.FocusMinutes != 45 {
		t.Errorf("settings did not survive: %+v", doc.Settings)
	}
}

func TestImportRejectsBadFile(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := AddTask(engine, TaskInput{Title: "keep me"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := Import(engine, path); err == nil {
		t.Error("expected an error for a missing file")
	}

	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Import(engine, path); err == nil {
		t.Error("expected an error for invalid json")
	}
	if len(engine.Document().Tasks) != 1 {
		t.Error("failed import modified the document")
	}
}
