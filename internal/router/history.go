package router

import (
	"sync"

	"github.com/katyella/kconsole/internal/constants"
)

// History is a bounded back stack of visited paths
type History struct {
	mu      sync.Mutex
	entries []string
	max     int
}

// NewHistory returns a history holding at most max entries
func NewHistory(max int) *History {
	if max <= 0 {
		max = constants.MaxHistoryEntries
	}
	return &History{max: max}
}

// Push records path as the current location. Pushing the current path again
// is a no-op.
func (h *History) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == path {
		return
	}
	h.entries = append(h.entries, path)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// Back drops the current location and returns the previous one. The first
// entry is never dropped.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) < 2 {
		return "", false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Current returns the current path, "/" when nothing was pushed
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "/"
	}
	return h.entries[len(h.entries)-1]
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
