package place

import (
	"strings"
	"sync"
)

// RecencyWindow remembers the last N accepted place keys and their regions.
type RecencyWindow struct {
	mu      sync.Mutex
	size    int
	keys    []string
	regions []string
}

func NewRecencyWindow(size int) *RecencyWindow {
	return &RecencyWindow{size: max(size, 0)}
}

// Add records key and region unless key is already present. It reports
// whether the key was new.
func (w *RecencyWindow) Add(key, region string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size == 0 {
		return true
	}
	for _, k := range w.keys {
		if k == key {
			return false
		}
	}
	w.keys = pushBounded(w.keys, key, w.size)
	w.regions = pushBounded(w.regions, strings.ToLower(strings.TrimSpace(region)), w.size)
	return true
}

func (w *RecencyWindow) Contains(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, k := range w.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Keys returns the remembered keys, oldest first.
func (w *RecencyWindow) Keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.keys))
	copy(out, w.keys)
	return out
}

// LastRegion is the region of the most recently accepted place, or "".
func (w *RecencyWindow) LastRegion() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.regions) == 0 {
		return ""
	}
	return w.regions[len(w.regions)-1]
}

func pushBounded(s []string, v string, size int) []string {
	s = append(s, v)
	if len(s) > size {
		s = append(s[:0], s[len(s)-size:]...)
	}
	return s
}
