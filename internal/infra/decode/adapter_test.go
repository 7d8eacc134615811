package decode

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// scriptSource delivers a fixed list of frames, then blocks until the run is
// cancelled.
type scriptSource struct {
	openErr error
	frames  []scan.Frame

	mu     sync.Mutex
	next   int
	closed bool
}

func (s *scriptSource) Open(ctx context.Context) error { return s.openErr }

func (s *scriptSource) NextFrame(ctx context.Context) (scan.Frame, error) {
	s.mu.Lock()
	if s.next < len(s.frames) {
		f := s.frames[s.next]
		s.next++
		s.mu.Unlock()
		return f, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return scan.Frame{}, ctx.Err()
}

func (s *scriptSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// scriptEngine returns one scripted outcome per frame, in order.
type scriptEngine struct {
	mu       sync.Mutex
	outcomes []func() (*scan.Event, error)
	formats  []scan.Format
}

func (e *scriptEngine) DecodeFrame(ctx context.Context, frame scan.Frame, formats []scan.Format) (*scan.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.formats = formats
	if len(e.outcomes) == 0 {
		return nil, nil
	}
	out := e.outcomes[0]
	e.outcomes = e.outcomes[1:]
	return out()
}

type collectSink struct {
	mu     sync.Mutex
	events []scan.Event
	misses int
}

func (s *collectSink) HandleDecode(ev scan.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *collectSink) HandleMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses++
}

func (s *collectSink) snapshot() ([]scan.Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scan.Event, len(s.events))
	copy(out, s.events)
	return out, s.misses
}

func TestStartOpenErrorPropagatesTyped(t *testing.T) {
	a := &Adapter{Engine: &scriptEngine{}}
	src := &scriptSource{openErr: fmt.Errorf("%w: camera gone", scan.ErrNoDevice)}

	_, err := a.Start(context.Background(), src, []scan.Format{scan.FormatQRCode}, &collectSink{})
	require.ErrorIs(t, err, scan.ErrNoDevice)
}

func TestRunDeliversDecodesAndMisses(t *testing.T) {
	engine := &scriptEngine{outcomes: []func() (*scan.Event, error){
		func() (*scan.Event, error) {
			return &scan.Event{
				Data:   "hello",
				Format: scan.FormatQRCode,
				Points: []r2.Point{{X: 1, Y: 1}},
			}, nil
		},
		func() (*scan.Event, error) { return nil, nil },
		func() (*scan.Event, error) { return nil, fmt.Errorf("engine choked") },
	}}
	src := &scriptSource{frames: []scan.Frame{
		{Width: 640, Height: 480},
		{Width: 640, Height: 480},
		{Width: 640, Height: 480},
	}}
	sink := &collectSink{}

	a := &Adapter{Engine: engine}
	handle, err := a.Start(context.Background(), src, []scan.Format{scan.FormatQRCode}, sink)
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID())

	require.Eventually(t, func() bool {
		events, misses := sink.snapshot()
		return len(events) == 1 && misses == 2
	}, time.Second, 5*time.Millisecond)

	events, _ := sink.snapshot()
	assert.Equal(t, "hello", events[0].Data)
	// the adapter stamps frame dimensions onto the event
	assert.Equal(t, 640, events[0].FrameWidth)
	assert.Equal(t, 480, events[0].FrameHeight)

	handle.Stop()
	assert.True(t, src.isClosed())
}

func TestStopReleasesSource(t *testing.T) {
	src := &scriptSource{}
	a := &Adapter{Engine: &scriptEngine{}}

	handle, err := a.Start(context.Background(), src, []scan.Format{scan.FormatQRCode}, &collectSink{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		handle.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.True(t, src.isClosed())
}

func TestRunEndsWhenStreamDies(t *testing.T) {
	// a source with no frames and a cancelled context ends the run
	src := &scriptSource{}
	a := &Adapter{Engine: &scriptEngine{}}

	ctx, cancel := context.WithCancel(context.Background())
	handle, err := a.Start(ctx, src, []scan.Format{scan.FormatQRCode}, &collectSink{})
	require.NoError(t, err)

	cancel()
	handle.Stop()
	assert.True(t, src.isClosed())
}

func TestRunPassesFormatsToEngine(t *testing.T) {
	engine := &scriptEngine{}
	src := &scriptSource{frames: []scan.Frame{{Width: 1, Height: 1}}}

	formats := []scan.Format{scan.FormatCode128, scan.FormatEAN13}
	a := &Adapter{Engine: engine}
	handle, err := a.Start(context.Background(), src, formats, &collectSink{})
	require.NoError(t, err)
	defer handle.Stop()

	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.formats) == 2
	}, time.Second, 5*time.Millisecond)

	engine.mu.Lock()
	got := engine.formats
	engine.mu.Unlock()
	assert.Equal(t, formats, got)
}
