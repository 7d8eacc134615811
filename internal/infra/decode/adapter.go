package decode

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// FrameDecoder is the underlying single-frame decode engine. A nil event
// means the frame held no detectable code.
type FrameDecoder interface {
	DecodeFrame(ctx context.Context, frame scan.Frame, formats []scan.Format) (*scan.Event, error)
}

// Adapter turns a frame-by-frame engine into a continuous decode run over a
// live video source. One run per handle; swapping the recognized formats
// requires a full stop and a new Start.
type Adapter struct {
	Engine FrameDecoder
	// Interval paces frame processing; zero decodes as fast as the source
	// delivers.
	Interval time.Duration
}

type run struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *run) ID() string { return r.id }

// Stop cancels the loop and blocks until the stream is released.
func (r *run) Stop() {
	r.cancel()
	<-r.done
}

// Start opens the source and begins decoding in a background goroutine.
// Source open failures come back typed (permission-denied, no-device,
// unsupported) and are the caller's problem; after a successful open the run
// only ends via Stop or the stream going away.
func (a *Adapter) Start(ctx context.Context, source scan.VideoSource, formats []scan.Format, sink scan.EventSink) (scan.RunHandle, error) {
	if err := source.Open(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	recognized := make([]scan.Format, len(formats))
	copy(recognized, formats)

	go a.loop(runCtx, r, source, recognized, sink)
	return r, nil
}

func (a *Adapter) loop(ctx context.Context, r *run, source scan.VideoSource, formats []scan.Format, sink scan.EventSink) {
	defer close(r.done)
	defer func() {
		if err := source.Close(); err != nil {
			log.Warnf("closing capture source: %v", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		frame, err := source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorf("decode run %s: frame read failed: %v", r.id, err)
			return
		}

		ev, err := a.Engine.DecodeFrame(ctx, frame, formats)
		if err != nil {
			// engine hiccups are per-frame, keep going
			log.Warnf("decode run %s: engine error: %v", r.id, err)
			sink.HandleMiss()
			continue
		}
		if ev == nil {
			sink.HandleMiss()
		} else {
			ev.FrameWidth = frame.Width
			ev.FrameHeight = frame.Height
			sink.HandleDecode(*ev)
		}

		if a.Interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.Interval):
			}
		}
	}
}
