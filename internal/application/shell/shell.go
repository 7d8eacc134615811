package shell

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bryanwahyu/lenscan/internal/application/scanner"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// View enum
type View string

const (
	ViewScan    View = "scan"
	ViewHistory View = "history"
)

func (v View) Valid() bool { return v == ViewScan || v == ViewHistory }

// ErrNotFound is returned when a history entry no longer exists.
var ErrNotFound = errors.New("scan not found")

// ScanGate is the slice of the controller the shell drives.
type ScanGate interface {
	Pause()
	Resume()
}

// Shell tracks the visible view and the result drawer. The ordering contract
// the pipeline depends on: opening a drawer pauses the gate before anything
// else; closing it (or returning to the scan view) re-arms acceptance
// synchronously.
type Shell struct {
	Gate    ScanGate
	Coord   *scanner.Coordinator
	History *scanner.History

	mu     sync.Mutex
	view   View
	active *scan.Result
}

func New(gate ScanGate, coord *scanner.Coordinator, history *scanner.History) *Shell {
	return &Shell{Gate: gate, Coord: coord, History: history, view: ViewScan}
}

// OpenDrawer opens the drawer for a freshly surfaced live-scan result.
func (s *Shell) OpenDrawer(r *scan.Result) {
	s.Gate.Pause()

	s.mu.Lock()
	s.active = r
	s.mu.Unlock()

	s.Coord.Surface(r)
}

// OpenFromHistory opens the drawer for an existing history entry. The entry
// is not re-inserted; a cached analysis shows instantly, a missing one
// triggers exactly one new lookup.
func (s *Shell) OpenFromHistory(ts time.Time) error {
	s.Gate.Pause()

	entry := s.History.Find(ts)
	if entry == nil {
		s.Gate.Resume()
		return fmt.Errorf("%w: %s", ErrNotFound, ts.Format(time.RFC3339Nano))
	}

	s.mu.Lock()
	s.active = entry
	s.mu.Unlock()

	s.Coord.Reopen(entry)
	return nil
}

// CloseDrawer clears the active result first, then re-arms acceptance, so a
// new decode can surface right away without racing the clear.
func (s *Shell) CloseDrawer() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	s.Gate.Resume()
}

// SetView switches between the live-scan and history views. Entering the
// scan view re-arms acceptance unless a drawer is open; entering the history
// view pauses scanning.
func (s *Shell) SetView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view: %s", v)
	}

	s.mu.Lock()
	s.view = v
	drawerOpen := s.active != nil
	s.mu.Unlock()

	switch v {
	case ViewScan:
		if !drawerOpen {
			s.Gate.Resume()
		}
	case ViewHistory:
		s.Gate.Pause()
	}
	return nil
}

func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Active returns the result currently shown in the drawer, or nil.
func (s *Shell) Active() *scan.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
