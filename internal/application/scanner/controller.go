package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/bryanwahyu/lenscan/internal/application"
	appoverlay "github.com/bryanwahyu/lenscan/internal/application/overlay"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// DefaultDebounce is the pause between drawing the highlight and handing the
// result onward, long enough for a human to perceive the highlighted frame.
const (
	DefaultDebounce = 150 * time.Millisecond
	minDebounce     = 100 * time.Millisecond
	maxDebounce     = 200 * time.Millisecond
)

// Controller owns the active decode run and the mode state machine:
// {auto, area, line} x {accepting, paused}. All state mutations go through
// serialized event handling; decode events arriving while paused are dropped,
// never queued.
type Controller struct {
	Decoder  scan.Decoder
	Source   scan.VideoSource
	Overlay  *appoverlay.Renderer
	Clock    application.Clock
	Debounce time.Duration
	// InitialMode seeds the state machine before the first Start; empty
	// means auto.
	InitialMode scan.Mode

	// OnResult receives the surfaced result after the debounce. Wired by
	// the caller to the presentation shell.
	OnResult func(*scan.Result)

	runMu sync.Mutex // serializes start/stop/restart
	ctx   context.Context

	mu        sync.Mutex
	mode      scan.Mode
	accepting bool
	torchOn   bool
	handle    scan.RunHandle
}

// Start opens the source and begins the first decode run in the current mode
// (auto unless set). Capture failures are fatal to the scan view and are
// returned as typed errors.
func (c *Controller) Start(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	if c.handle != nil {
		c.mu.Unlock()
		return fmt.Errorf("controller already running")
	}
	if c.mode == "" {
		if c.InitialMode.Valid() {
			c.mode = c.InitialMode
		} else {
			c.mode = scan.ModeAuto
		}
	}
	mode := c.mode
	c.mu.Unlock()

	c.ctx = ctx
	handle, err := c.startRun(mode)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.handle = handle
	c.accepting = true
	c.mu.Unlock()
	log.Infof("decode run %s started in %s mode", handle.ID(), mode)
	return nil
}

// Stop ends the active run, releasing the stream before returning.
func (c *Controller) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.accepting = false
	c.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
}

// SetMode swaps the recognized symbology set by fully restarting the decode
// run: the previous run is stopped and its stream released before the next
// one starts. The torch indicator resets to off because the replaced stream
// owned the torch; callers must re-toggle after the restart.
func (c *Controller) SetMode(m scan.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode: %s", m)
	}

	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	if m == c.mode {
		c.mu.Unlock()
		return nil
	}
	old := c.handle
	c.handle = nil
	c.mu.Unlock()

	if old != nil {
		old.Stop()
		log.Infof("decode run %s stopped for mode change", old.ID())
	}

	c.mu.Lock()
	c.torchOn = false
	c.mu.Unlock()

	handle, err := c.startRun(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.mode = m
	c.handle = handle
	c.mu.Unlock()
	log.Infof("decode run %s started in %s mode", handle.ID(), m)
	return nil
}

func (c *Controller) startRun(m scan.Mode) (scan.RunHandle, error) {
	formats, err := scan.FormatsFor(m)
	if err != nil {
		return nil, err
	}
	return c.Decoder.Start(c.ctx, c.Source, formats, c)
}

// Pause stops accepting decode events and clears the overlay. Driven by the
// shell when a drawer opens.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.accepting = false
	c.mu.Unlock()
	if c.Overlay != nil {
		c.Overlay.Clear()
	}
}

// Resume re-arms event acceptance immediately and synchronously, so the next
// decode can surface as soon as the drawer closes.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.accepting = true
	c.mu.Unlock()
}

// SetTorch toggles the torch when the source supports it. Failures are
// logged, never surfaced: torch is a convenience, not part of the pipeline.
func (c *Controller) SetTorch(ctx context.Context, on bool) {
	tc, ok := c.Source.(scan.TorchController)
	if !ok || !tc.TorchSupported() {
		log.Warnf("torch not supported by capture source")
		return
	}
	if err := tc.SetTorch(ctx, on); err != nil {
		log.Errorf("torch toggle failed: %v", err)
		return
	}
	c.mu.Lock()
	c.torchOn = on
	c.mu.Unlock()
}

func (c *Controller) Mode() scan.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Accepting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepting
}

func (c *Controller) TorchOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.torchOn
}

// HandleDecode implements scan.EventSink. While paused the event is dropped
// outright. While accepting, the overlay is drawn immediately and the result
// is handed onward after the debounce; the timer re-checks acceptance so a
// drawer opened in the meantime wins.
func (c *Controller) HandleDecode(ev scan.Event) {
	c.mu.Lock()
	if !c.accepting {
		c.mu.Unlock()
		return
	}
	now := c.Clock.Now()
	c.mu.Unlock()

	if c.Overlay != nil {
		c.Overlay.Render(ev.Points, ev.Format, ev.FrameWidth, ev.FrameHeight)
	}

	result := scan.NewResult(ev.Data, ev.Format, now)
	time.AfterFunc(c.debounce(), func() {
		if !c.Accepting() {
			return
		}
		if cb := c.OnResult; cb != nil {
			cb(result)
		}
	})
}

// HandleMiss implements scan.EventSink: frames without a detectable code are
// not errors, the overlay is simply wiped for the next attempt.
func (c *Controller) HandleMiss() {
	if !c.Accepting() {
		return
	}
	if c.Overlay != nil {
		c.Overlay.Clear()
	}
}

func (c *Controller) debounce() time.Duration {
	d := c.Debounce
	if d == 0 {
		return DefaultDebounce
	}
	if d < minDebounce {
		return minDebounce
	}
	if d > maxDebounce {
		return maxDebounce
	}
	return d
}
