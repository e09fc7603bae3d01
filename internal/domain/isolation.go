package domain

import (
	"fmt"
	"strings"
)

// IsolationLevel is the closed set of levels the demos accept. The mapping
// to the store driver's own level constants lives with the SQL code.
type IsolationLevel string

const (
	LevelDefault    IsolationLevel = ""
	ReadUncommitted IsolationLevel = "READ_UNCOMMITTED"
	ReadCommitted   IsolationLevel = "READ_COMMITTED"
	RepeatableRead  IsolationLevel = "REPEATABLE_READ"
	Serializable    IsolationLevel = "SERIALIZABLE"
)

// ParseIsolationLevel parses a level name case-insensitively, failing fast
// on anything outside the known set.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	switch level := IsolationLevel(strings.ToUpper(strings.TrimSpace(s))); level {
	case ReadUncommitted, ReadCommitted, RepeatableRead, Serializable:
		return level, nil
	default:
		return LevelDefault, fmt.Errorf("%w: %q", ErrUnknownIsolationLevel, s)
	}
}

func (l IsolationLevel) String() string {
	return string(l)
}
