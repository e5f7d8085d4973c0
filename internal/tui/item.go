package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/hfnukal/morotasks/internal/service"
)

// editor is the inline edit field of a single task.
type editor struct {
	id        service.ID
	completed bool
	input     textinput.Model
}

func newEditor(t service.Task, width int) *editor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1024
	ti.Width = width
	ti.SetValue(t.Text)
	ti.CursorEnd()
	ti.Focus()
	return &editor{id: t.ID, completed: t.Completed, input: ti}
}

// task is what a commit sends to the store. Completion is taken from the
// current collection when the task is still there.
func (e *editor) task(current []service.Task) service.Task {
	completed := e.completed
	for _, t := range current {
		if t.ID == e.id {
			completed = t.Completed
			break
		}
	}
	return service.Task{ID: e.id, Text: e.input.Value(), Completed: completed}
}

func checkbox(t service.Task) string {
	switch {
	case t.ID.IsPending():
		return pendingStyle.Render("[ ]")
	case t.Completed:
		return "[x]"
	default:
		return "[ ]"
	}
}

func renderItem(t service.Task, selected bool, ed *editor) string {
	var b strings.Builder
	if selected {
		b.WriteString(cursorStyle.Render("> "))
	} else {
		b.WriteString("  ")
	}
	b.WriteString(checkbox(t))
	b.WriteString(" ")

	switch {
	case ed != nil && ed.id == t.ID:
		b.WriteString(ed.input.View())
	case t.Completed:
		b.WriteString(doneStyle.Render(t.Text))
	case t.ID.IsPending():
		b.WriteString(pendingStyle.Render(t.Text))
	default:
		b.WriteString(t.Text)
	}
	return b.String()
}
