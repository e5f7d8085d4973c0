// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/hfnukal/morotasks/internal/service"
)

// FormatTask formats a numbered task line.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned number, two spaces,
// completion box, text)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeText(task.Text))
}

// FormatTasks prints tasks numbered from 1.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
