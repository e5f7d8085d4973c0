package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrTaskRefRequired indicates no task number was provided.
var ErrTaskRefRequired = errors.New("task number required")

// ParseTaskRef parses the 1-based task number from the first argument.
// Task numbers are positions in the listed view, as printed by list.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task number: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid task number: %s", ref)
	}
	if num < 1 {
		return 0, fmt.Errorf("task number out of range: %d", num)
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
