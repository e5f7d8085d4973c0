package tui

import "github.com/hfnukal/morotasks/internal/service"

// Filter selects which tasks the collection view shows. It is local to the
// view and never sent to the backend.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterIncomplete
)

var filterNames = [...]string{"All", "Completed", "Not completed"}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return "unknown"
	}
	return filterNames[f]
}

// Next cycles All -> Completed -> Not completed -> All.
func (f Filter) Next() Filter {
	return (f + 1) % Filter(len(filterNames))
}

// Apply returns the tasks f lets through, in collection order.
func (f Filter) Apply(tasks []service.Task) []service.Task {
	if f == FilterAll {
		return tasks
	}
	want := f == FilterCompleted
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

// ParseFilter accepts the names used on the command line.
func ParseFilter(s string) (Filter, bool) {
	switch s {
	case "", "all":
		return FilterAll, true
	case "completed", "c":
		return FilterCompleted, true
	case "incomplete", "nc":
		return FilterIncomplete, true
	}
	return FilterAll, false
}
