// Package timer implements the pomodoro countdown TUI. Finishing a phase
// appends a record through the engine and swaps between focus and break.
package timer

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"timekeep/internal/model"
	"timekeep/internal/operations"
	"timekeep/internal/sync"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Faint(true)
	helpStyle  = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

type tickMsg time.Time

// timerModel is the bubbletea model for the countdown
type timerModel struct {
	engine   *sync.Engine
	taskID   string // bound task, may be empty
	mode     string
	total    time.Duration
	remain   time.Duration
	running  bool
	progress progress.Model
	quitting bool
}

func newModel(engine *sync.Engine, taskID string) timerModel {
	settings := engine.Document().Settings
	total := time.Duration(settings.FocusMinutes) * time.Minute

	return timerModel{
		engine:   engine,
		taskID:   taskID,
		mode:     model.ModeFocus,
		total:    total,
		remain:   total,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m timerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and advances the countdown
func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "s", " ":
			if m.running {
				m.running = false
				return m, nil
			}
			m.running = true
			return m, tick()

		case "r":
			m.running = false
			m.remain = m.phaseDuration(m.mode)
			m.total = m.remain
			return m, nil
		}

	case tickMsg:
		if !m.running {
			return m, nil
		}
		m.remain -= time.Second
		if m.remain > 0 {
			return m, tick()
		}
		return m.finishPhase(), tick()
	}

	return m, nil
}

// finishPhase records the completed phase and arms the opposite one.
func (m timerModel) finishPhase() timerModel {
	operations.RecordPomodoro(m.engine, m.taskID, m.mode, m.total)

	if m.mode == model.ModeFocus {
		m.mode = model.ModeBreak
	} else {
		m.mode = model.ModeFocus
	}
	m.total = m.phaseDuration(m.mode)
	m.remain = m.total
	return m
}

func (m timerModel) phaseDuration(mode string) time.Duration {
	settings := m.engine.Document().Settings
	if mode == model.ModeFocus {
		return time.Duration(settings.FocusMinutes) * time.Minute
	}
	return time.Duration(settings.BreakMinutes) * time.Minute
}

// View renders the countdown
func (m timerModel) View() string {
	if m.quitting {
		return ""
	}

	label := "Focus"
	if m.mode == model.ModeBreak {
		label = "Break"
	}
	state := "paused"
	if m.running {
		state = "running"
	}

	taskLine := ""
	if m.taskID != "" {
		if task := m.engine.Document().FindTask(m.taskID); task != nil {
			taskLine = labelStyle.Render("Task: "+task.Title) + "\n"
		} else {
			taskLine = labelStyle.Render("Task: (deleted)") + "\n"
		}
	}

	elapsed := m.total - m.remain
	pct := 0.0
	if m.total > 0 {
		pct = float64(elapsed) / float64(m.total)
	}

	minutes := int(m.remain.Minutes())
	seconds := int(m.remain.Seconds()) % 60

	return fmt.Sprintf("%s\n%s%s  %s\n%s\n%s\n",
		titleStyle.Render(fmt.Sprintf("Pomodoro: %s", label)),
		taskLine,
		clockStyle.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)),
		labelStyle.Render(state),
		m.progress.ViewAs(pct),
		helpStyle.Render("s start/pause • r reset • q quit"),
	)
}

// Run starts the timer TUI, optionally bound to a task. Pending commits
// are flushed by the caller when the program exits.
func Run(engine *sync.Engine, taskID string) error {
	p := tea.NewProgram(newModel(engine, taskID))
	_, err := p.Run()
	return err
}
