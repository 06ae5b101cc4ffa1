package domain

import (
	"fmt"
)

// Scope restricts an analysis to one sales channel, or none
type Scope string

const (
	ScopeAll   Scope = "all"
	ScopeStore Scope = "store"
	ScopeWeb   Scope = "web"
)

// Matches reports whether a channel falls inside the scope
func (s Scope) Matches(c Channel) bool {
	switch s {
	case ScopeStore:
		return c == ChannelStore
	case ScopeWeb:
		return c == ChannelWeb
	default:
		return true
	}
}

// ParseScope parses a scope query value, defaulting to ScopeAll for
// the empty string.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "all":
		return ScopeAll, nil
	case "store", "mag":
		return ScopeStore, nil
	case "web":
		return ScopeWeb, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}
