// Package tui is the interactive terminal view: the task collection with its
// filter, add field and bulk gestures, and the inline task editor.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hfnukal/morotasks/internal/logging"
	"github.com/hfnukal/morotasks/internal/service"
	"github.com/hfnukal/morotasks/internal/store"
)

// loadDoneMsg reports the end of a load or refresh.
type loadDoneMsg struct{ err error }

// mutationDoneMsg reports the end of a create, update, completion or delete
// request. Failures are logged by the store and not shown.
type mutationDoneMsg struct{ err error }

// Model is the bubbletea model of the collection view.
type Model struct {
	ctx    context.Context
	store  *store.Store
	logger *slog.Logger
	keys   keyMap
	help   help.Model

	filter Filter
	cursor int
	adding bool
	add    textinput.Model
	editor *editor
	notice string
	width  int
}

// New creates the view over st. Network work uses ctx.
func New(ctx context.Context, st *store.Store, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 1024
	ti.Width = 40

	return Model{
		ctx:    ctx,
		store:  st,
		logger: logger.With(slog.String("component", "tui")),
		keys:   defaultKeyMap(),
		help:   help.New(),
		add:    ti,
	}
}

// Run starts the view and blocks until the user quits.
func Run(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	program := tea.NewProgram(New(ctx, st, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Filter returns the active filter.
func (m Model) Filter() Filter { return m.filter }

// Editing reports whether a task is being edited.
func (m Model) Editing() bool { return m.editor != nil }

// Visible returns the tasks the active filter shows.
func (m Model) Visible() []service.Task {
	return m.filter.Apply(m.store.State().Tasks)
}

func (m Model) Init() tea.Cmd {
	return m.startLoad(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.add.Width = max(msg.Width-10, 10)
		return m, nil
	case loadDoneMsg:
		m.cursor = clampCursor(m.cursor, len(m.Visible()))
		return m, nil
	case mutationDoneMsg:
		m.cursor = clampCursor(m.cursor, len(m.Visible()))
		m.followSwap()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.editor != nil:
			return m.updateEditing(msg)
		case m.adding:
			return m.updateAdding(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	visible := m.Visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, m.startLoad(true)
	}

	if m.store.State().Status != store.StatusLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(visible))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.cursor = clampCursor(m.cursor, len(m.Visible()))
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		return m, m.add.Focus()
	case key.Matches(msg, m.keys.Edit):
		if len(visible) == 0 {
			return m, nil
		}
		m.editor = newEditor(visible[m.cursor], max(m.width-10, 20))
	case key.Matches(msg, m.keys.Toggle):
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.cursor]
		if t.ID.IsPending() {
			m.notice = "task is still being saved"
			return m, nil
		}
		mut, err := m.store.StartSetCompleted(t.ID, !t.Completed)
		return m, m.run(mut, err)
	case key.Matches(msg, m.keys.Delete):
		if len(visible) == 0 {
			return m, nil
		}
		mut, err := m.store.StartDelete(visible[m.cursor].ID)
		m.cursor = clampCursor(m.cursor, len(visible)-1)
		return m, m.run(mut, err)
	case key.Matches(msg, m.keys.CompleteAll):
		return m, m.run(m.store.StartCompleteAll(visible), nil)
	case key.Matches(msg, m.keys.ClearCompleted):
		mut := m.store.StartDeleteCompleted()
		m.cursor = clampCursor(m.cursor, len(m.Visible()))
		return m, m.run(mut, nil)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.add.Blur()
		m.add.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := m.add.Value()
		m.add.Reset()
		_, mut := m.store.StartAdd(text)
		return m, m.run(mut, nil)
	}

	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editor = nil
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.commit()
	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown, msg.Type == tea.KeyTab:
		// Leaving the field commits it.
		next, cmd := m.commit()
		if msg.Type == tea.KeyTab {
			return next, cmd
		}
		nm := next.(Model)
		delta := 1
		if msg.Type == tea.KeyUp {
			delta = -1
		}
		nm.cursor = clampCursor(nm.cursor+delta, len(nm.Visible()))
		return nm, cmd
	}

	var cmd tea.Cmd
	m.editor.input, cmd = m.editor.input.Update(msg)
	return m, cmd
}

// followSwap points an open editor at the server ID once the task it edits
// has been confirmed.
func (m Model) followSwap() {
	if m.editor != nil {
		m.editor.id = m.store.Resolve(m.editor.id)
	}
}

func (m Model) commit() (tea.Model, tea.Cmd) {
	m.followSwap()
	t := m.editor.task(m.store.State().Tasks)
	m.editor = nil
	mut, err := m.store.StartUpdate(t)
	return m, m.run(mut, err)
}

func (m Model) startLoad(force bool) tea.Cmd {
	fetch := m.store.StartLoad(force)
	if fetch == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return loadDoneMsg{err: fetch(ctx)}
	}
}

// run turns the network half of a store operation into a command. The
// optimistic change has already been applied when run is called.
func (m Model) run(mut store.Mutation, err error) tea.Cmd {
	if err != nil {
		m.logger.Warn("operation refused", "error", err)
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{err: mut(ctx)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	st := m.store.State()
	switch st.Status {
	case store.StatusNotStarted, store.StatusLoading:
		b.WriteString(loadingStyle.Render("Loading..."))
		b.WriteString("\n")
	case store.StatusFailed:
		b.WriteString(errBannerStyle.Render(st.Err))
		b.WriteString("\n")
	case store.StatusLoaded:
		b.WriteString(m.add.View())
		b.WriteString("\n")
		visible := m.filter.Apply(st.Tasks)
		for i, t := range visible {
			b.WriteString(renderItem(t, i == m.cursor && !m.adding, m.editor))
			b.WriteString("\n")
		}
		if len(visible) == 0 {
			b.WriteString(loadingStyle.Render("  nothing here"))
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, 3)
	for _, f := range []Filter{FilterAll, FilterCompleted, FilterIncomplete} {
		style := tabStyle
		if f == m.filter {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(f.String()))
	}
	return strings.Join(tabs, " ") + fmt.Sprintf("  %d tasks", len(m.store.State().Tasks))
}

func clampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
