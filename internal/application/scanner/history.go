package scanner

import (
	"sync"
	"time"

	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// DefaultHistoryLimit bounds the in-memory scan history.
const DefaultHistoryLimit = 50

// History keeps scan results newest first, bounded to a fixed maximum.
// Entries are process-lifetime only; eviction drops the oldest.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []*scan.Result
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push inserts a result at the head and trims to the bound.
func (h *History) Push(r *scan.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]*scan.Result{r}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// List returns a snapshot, newest first.
func (h *History) List() []*scan.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*scan.Result, len(h.entries))
	copy(out, h.entries)
	return out
}

// Find returns the entry whose timestamp matches, or nil.
func (h *History) Find(ts time.Time) *scan.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.Timestamp.Equal(ts) {
			return e
		}
	}
	return nil
}

// AttachAnalysis merges a completed analysis into the entry keyed by
// timestamp. A missing key is a silent no-op: the entry may have been
// evicted while the analysis was in flight. Returns whether a merge happened.
func (h *History) AttachAnalysis(ts time.Time, a *analysis.Analysis) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.Timestamp.Equal(ts) {
			e.Analysis = a
			return true
		}
	}
	return false
}

// Len returns the current entry count.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
