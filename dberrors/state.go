package dberrors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// State is the single lastError slot every component in spec §3 owns.
// Setting nil clears it; setting a new error replaces whatever was there.
type State struct {
	mu   sync.Mutex
	last *string
}

// Set records msg as the component's lastError, appending a
// "; Context: k1=v1, k2=v2" suffix when context is non-empty.
func (s *State) Set(msg string, context map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, context[k]))
		}
		msg = msg + "; Context: " + strings.Join(pairs, ", ")
	}
	s.last = &msg
}

// SetErr is a convenience wrapper over Set for a Go error value.
func (s *State) SetErr(err error, context map[string]any) {
	if err == nil {
		s.Clear()
		return
	}
	s.Set(err.Error(), context)
}

// Clear removes any recorded error.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}

// Get returns the current lastError, or nil if none is set.
func (s *State) Get() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
