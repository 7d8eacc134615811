package scanner

import (
	"context"
	"sync"

	"github.com/apex/log"

	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// Coordinator owns the result cache lifecycle: it inserts surfaced results
// into history and guarantees at most one in-flight enrichment per result
// identity (timestamp). Completed analyses are merged back by key, never by
// reference, so an entry evicted mid-flight simply misses the merge.
type Coordinator struct {
	History  *History
	Analyzer analysis.Analyzer

	mu      sync.Mutex
	pending map[int64]struct{}
}

func NewCoordinator(h *History, a analysis.Analyzer) *Coordinator {
	return &Coordinator{
		History:  h,
		Analyzer: a,
		pending:  make(map[int64]struct{}),
	}
}

// Surface promotes a newly decoded result: insert at the head of history and
// kick off enrichment. A result whose identity is already mid-enrichment is a
// complete no-op, and a result that already carries an analysis is inserted
// without any network call.
func (c *Coordinator) Surface(r *scan.Result) {
	key := r.Timestamp.UnixNano()

	c.mu.Lock()
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		log.Warnf("surface ignored, enrichment already in flight for %s", r.Timestamp)
		return
	}
	cached := r.Analysis != nil
	if !cached {
		c.pending[key] = struct{}{}
	}
	c.mu.Unlock()

	c.History.Push(r)

	if cached {
		log.Infof("analysis cached for %s, skipping lookup", r.Timestamp)
		return
	}
	go c.enrich(key, r)
}

// Reopen re-activates a history entry from the history view. An entry that
// already carries an analysis displays instantly; one that lacks it (still
// pending or previously degraded before eviction) triggers exactly one new
// enrichment. Reopen never inserts into history.
func (c *Coordinator) Reopen(r *scan.Result) {
	if r.Analysis != nil {
		return
	}
	key := r.Timestamp.UnixNano()

	c.mu.Lock()
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		return
	}
	c.pending[key] = struct{}{}
	c.mu.Unlock()

	go c.enrich(key, r)
}

// Pending reports whether an enrichment is in flight for the given identity.
func (c *Coordinator) Pending(r *scan.Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.pending[r.Timestamp.UnixNano()]
	return busy
}

// enrich runs in its own goroutine with a background context so a cancelled
// request cannot abort a lookup that is already underway. The analyzer never
// fails; whatever comes back is merged as-is.
func (c *Coordinator) enrich(key int64, r *scan.Result) {
	a := c.Analyzer.Analyze(context.Background(), r.Data, string(r.Format))

	merged := c.History.AttachAnalysis(r.Timestamp, a)
	if !merged {
		log.Warnf("analysis finished for evicted entry %s, dropping", r.Timestamp)
	}

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}
