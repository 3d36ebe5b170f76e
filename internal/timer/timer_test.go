package timer

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"timekeep/internal/api"
	"timekeep/internal/localstore"
	"timekeep/internal/model"
	"timekeep/internal/sync"
)

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

func newTestModel(t *testing.T) timerModel {
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
	return newModel(engine, "")
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelStartsInFocusMode(t *testing.T) {
	m := newTestModel(t)
	if m.mode != model.ModeFocus {
		t.Errorf("mode = %q, want focus", m.mode)
	}
	if m.total != time.Duration(model.DefaultFocusMinutes)*time.Minute {
		t.Errorf("total = %v", m.total)
	}
	if m.running {
		t.Error("timer should start paused")
	}
}

func TestStartPauseToggle(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(key("s"))
	m = updated.(timerModel)
	if !m.running {
		t.Fatal("s did not start the timer")
	}

	updated, _ = m.Update(key("s"))
	m = updated.(timerModel)
	if m.running {
		t.Fatal("s did not pause the timer")
	}
}

func TestTickCountsDownOnlyWhileRunning(t *testing.T) {
	m := newTestModel(t)
	before := m.remain

	updated, _ := m.Update(tickMsg(time.Now()))
	m = updated.(timerModel)
	if m.remain != before {
		t.Error("paused timer counted down")
	}

	updated, _ = m.Update(key("s"))
	m = updated.(timerModel)
	updated, _ = m.Update(tickMsg(time.Now()))
	m = updated.(timerModel)
	if m.remain != before-time.Second {
		t.Errorf("remain = %v, want %v", m.remain, before-time.Second)
	}
}

func TestFinishingFocusRecordsAndSwapsToBreak(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(key("s"))
	m = updated.(timerModel)

	// Fast-forward to the last second of the phase.
	m.remain = time.Second
	updated, _ = m.Update(tickMsg(time.Now()))
	m = updated.(timerModel)

	if m.mode != model.ModeBreak {
		t.Errorf("mode = %q, want break", m.mode)
	}
	if m.total != time.Duration(model.DefaultBreakMinutes)*time.Minute {
		t.Errorf("break total = %v", m.total)
	}

	history := m.engine.Document().PomodoroHistory
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Mode != model.ModeFocus {
		t.Errorf("recorded mode = %q", history[0].Mode)
	}
	if history[0].Duration != model.DefaultFocusMinutes*60 {
		t.Errorf("recorded duration = %d seconds", history[0].Duration)
	}
}

func TestResetRestoresFullPhase(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(key("s"))
	m = updated.(timerModel)
	m.remain = 10 * time.Second

	updated, _ = m.Update(key("r"))
	m = updated.(timerModel)
	if m.running {
		t.Error("reset should pause the timer")
	}
	if m.remain != time.Duration(model.DefaultFocusMinutes)*time.Minute {
		t.Errorf("remain after reset = %v", m.remain)
	}
}
