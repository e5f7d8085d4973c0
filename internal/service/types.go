// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// TempPrefix marks a client-generated identifier on the wire.
const TempPrefix = "tmp-"

// ErrNotFound is returned by backends when a task does not exist.
var ErrNotFound = errors.New("not found")

// ID identifies a task. It is either pending (a client placeholder awaiting
// a server-assigned identifier) or confirmed (assigned by the server).
// The zero ID is confirmed and empty.
type ID struct {
	value   string
	pending bool
}

// PendingID returns a fresh client placeholder identifier.
func PendingID() ID {
	return ID{value: TempPrefix + uuid.NewString(), pending: true}
}

// ConfirmedID wraps a server-assigned identifier.
func ConfirmedID(s string) ID {
	return ID{value: s}
}

// ParseID interprets a wire identifier. Strings carrying TempPrefix are pending.
func ParseID(s string) ID {
	if strings.HasPrefix(s, TempPrefix) {
		return ID{value: s, pending: true}
	}
	return ConfirmedID(s)
}

// IsPending reports whether the identifier still awaits server confirmation.
func (id ID) IsPending() bool { return id.pending }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id.value == "" }

func (id ID) String() string { return id.value }

// MarshalJSON encodes the identifier as a plain string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON decodes a plain string identifier.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ParseID(s)
	return nil
}

// Task represents a single todo item.
type Task struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}
