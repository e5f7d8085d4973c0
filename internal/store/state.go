// Package store holds the client-side task collection and applies the
// optimistic-update protocol against a service.Service backend.
//
// Every mutation is an Action passed through Reduce, a pure transition
// function. A Store owns one State and serialises Dispatch calls.
package store

import (
	"github.com/hfnukal/morotasks/internal/service"
)

// Status is the load lifecycle of a State.
type Status int

const (
	StatusNotStarted Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the task collection plus its load status.
type State struct {
	Tasks  []service.Task
	Status Status
	// Err is the message of the last failed load.
	Err string
}

// Find returns the task with the given ID and its position.
func (s State) Find(id service.ID) (service.Task, int, bool) {
	for i, t := range s.Tasks {
		if t.ID == id {
			return t, i, true
		}
	}
	return service.Task{}, -1, false
}

// Completed returns the completed tasks in collection order.
func (s State) Completed() []service.Task {
	var out []service.Task
	for _, t := range s.Tasks {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func (s State) clone() State {
	c := s
	c.Tasks = append([]service.Task(nil), s.Tasks...)
	return c
}
