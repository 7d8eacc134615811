package scanner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lenscan/internal/application"
	appoverlay "github.com/bryanwahyu/lenscan/internal/application/overlay"
	domoverlay "github.com/bryanwahyu/lenscan/internal/domain/overlay"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

type fakeHandle struct {
	id      string
	mu      sync.Mutex
	stopped bool
}

func (h *fakeHandle) ID() string { return h.id }
func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}
func (h *fakeHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

type fakeDecoder struct {
	mu      sync.Mutex
	starts  [][]scan.Format
	handles []*fakeHandle
	err     error
}

func (d *fakeDecoder) Start(ctx context.Context, source scan.VideoSource, formats []scan.Format, sink scan.EventSink) (scan.RunHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.starts = append(d.starts, formats)
	h := &fakeHandle{id: fmt.Sprintf("run-%d", len(d.handles))}
	d.handles = append(d.handles, h)
	return h, nil
}

type fakeSource struct{}

func (fakeSource) Open(ctx context.Context) error                  { return nil }
func (fakeSource) NextFrame(ctx context.Context) (scan.Frame, error) { return scan.Frame{}, nil }
func (fakeSource) Close() error                                    { return nil }

type torchSource struct {
	fakeSource
	mu   sync.Mutex
	on   bool
	fail bool
}

func (s *torchSource) TorchSupported() bool { return true }
func (s *torchSource) SetTorch(ctx context.Context, on bool) error {
	if s.fail {
		return fmt.Errorf("torch broken")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = on
	return nil
}

type stubCanvas struct {
	mu     sync.Mutex
	w, h   int
	cmds   []domoverlay.Command
	clears int
}

func (c *stubCanvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}
func (c *stubCanvas) SetSize(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w, c.h = w, h
}
func (c *stubCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = nil
	c.clears++
}
func (c *stubCanvas) Draw(cmd domoverlay.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = append(c.cmds, cmd)
}
func (c *stubCanvas) commands() []domoverlay.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domoverlay.Command, len(c.cmds))
	copy(out, c.cmds)
	return out
}

func newTestController(t *testing.T, dec *fakeDecoder, src scan.VideoSource) (*Controller, *stubCanvas, chan *scan.Result) {
	t.Helper()
	canvas := &stubCanvas{}
	results := make(chan *scan.Result, 8)
	c := &Controller{
		Decoder:  dec,
		Source:   src,
		Overlay:  appoverlay.NewRenderer(canvas),
		Clock:    &application.StepClock{Base: time.Unix(100, 0), Step: time.Second},
		Debounce: 100 * time.Millisecond,
		OnResult: func(r *scan.Result) { results <- r },
	}
	return c, canvas, results
}

func TestStartDefaultsToAutoMode(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, _ := newTestController(t, dec, fakeSource{})

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.Equal(t, scan.ModeAuto, c.Mode())
	assert.True(t, c.Accepting())

	want, _ := scan.FormatsFor(scan.ModeAuto)
	require.Len(t, dec.starts, 1)
	assert.Equal(t, want, dec.starts[0])
}

func TestStartPropagatesCaptureError(t *testing.T) {
	dec := &fakeDecoder{err: scan.ErrPermissionDenied}
	c, _, _ := newTestController(t, dec, fakeSource{})

	err := c.Start(context.Background())
	require.ErrorIs(t, err, scan.ErrPermissionDenied)
	assert.False(t, c.Accepting())
}

func TestDecodeSurfacesAfterDebounce(t *testing.T) {
	dec := &fakeDecoder{}
	c, canvas, results := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.HandleDecode(scan.Event{
		Data:        "https://example.com",
		Format:      scan.FormatQRCode,
		Points:      []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		FrameWidth:  640,
		FrameHeight: 480,
	})

	// overlay drawn immediately, before the debounce elapses
	cmds := canvas.commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, domoverlay.ShapePolygon, cmds[0].Shape)

	select {
	case r := <-results:
		assert.Equal(t, "https://example.com", r.Data)
		assert.Equal(t, scan.ContentURL, r.Type)
		assert.Equal(t, time.Unix(100, 0), r.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("result was never handed off")
	}
}

func TestDecodeWhilePausedIsDropped(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, results := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.Pause()
	c.HandleDecode(scan.Event{Data: "ignored", Format: scan.FormatQRCode})

	select {
	case <-results:
		t.Fatal("paused controller surfaced a result")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPauseDuringDebounceDropsHandoff(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, results := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.HandleDecode(scan.Event{Data: "late", Format: scan.FormatQRCode})
	c.Pause() // drawer opened before the timer fired

	select {
	case <-results:
		t.Fatal("handoff fired despite pause")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestResumeIsImmediate(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, results := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.Pause()
	c.Resume()
	assert.True(t, c.Accepting())

	c.HandleDecode(scan.Event{Data: "next", Format: scan.FormatQRCode})
	select {
	case r := <-results:
		assert.Equal(t, "next", r.Data)
	case <-time.After(time.Second):
		t.Fatal("result was never handed off after resume")
	}
}

func TestSetModeRestartsRunAndResetsTorch(t *testing.T) {
	dec := &fakeDecoder{}
	src := &torchSource{}
	c, _, _ := newTestController(t, dec, src)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.SetTorch(context.Background(), true)
	require.True(t, c.TorchOn())

	require.NoError(t, c.SetMode(scan.ModeLine))

	assert.True(t, dec.handles[0].isStopped())
	require.Len(t, dec.starts, 2)
	want, _ := scan.FormatsFor(scan.ModeLine)
	assert.Equal(t, want, dec.starts[1])
	assert.Equal(t, scan.ModeLine, c.Mode())
	// torch capability died with the replaced stream
	assert.False(t, c.TorchOn())
}

func TestSetModeSameModeIsNoop(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, _ := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	require.NoError(t, c.SetMode(scan.ModeAuto))
	assert.Len(t, dec.starts, 1)
	assert.False(t, dec.handles[0].isStopped())
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, _ := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.Error(t, c.SetMode(scan.Mode("bogus")))
	assert.Len(t, dec.starts, 1)
}

func TestSetTorchUnsupportedIsLoggedNotFatal(t *testing.T) {
	dec := &fakeDecoder{}
	c, _, _ := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.SetTorch(context.Background(), true)
	assert.False(t, c.TorchOn())
}

func TestSetTorchFailureKeepsIndicatorOff(t *testing.T) {
	dec := &fakeDecoder{}
	src := &torchSource{fail: true}
	c, _, _ := newTestController(t, dec, src)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.SetTorch(context.Background(), true)
	assert.False(t, c.TorchOn())
}

func TestMissClearsOverlayWhileAccepting(t *testing.T) {
	dec := &fakeDecoder{}
	c, canvas, _ := newTestController(t, dec, fakeSource{})
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	c.HandleDecode(scan.Event{
		Data:        "x",
		Format:      scan.FormatQRCode,
		Points:      []r2.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}},
		FrameWidth:  10,
		FrameHeight: 10,
	})
	require.NotEmpty(t, canvas.commands())

	c.HandleMiss()
	assert.Empty(t, canvas.commands())
}
