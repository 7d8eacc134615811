package scan

import (
	"context"

	"github.com/golang/geo/r2"
)

// Frame is a single captured video frame handed to the decode engine.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// Event is one successful decode of a frame.
type Event struct {
	Data        string
	Format      Format
	Points      []r2.Point
	FrameWidth  int
	FrameHeight int
}

// EventSink receives per-frame outcomes from a decode run: exactly one of
// HandleDecode or HandleMiss per processed frame.
type EventSink interface {
	HandleDecode(Event)
	HandleMiss()
}

// VideoSource port (interface over the live stream)
type VideoSource interface {
	Open(ctx context.Context) error
	NextFrame(ctx context.Context) (Frame, error)
	Close() error
}

// TorchController is an optional capability of a VideoSource. Callers must
// check TorchSupported before toggling.
type TorchController interface {
	TorchSupported() bool
	SetTorch(ctx context.Context, on bool) error
}

// RunHandle owns one continuous decode run. Stop blocks until the run has
// fully released the underlying stream.
type RunHandle interface {
	ID() string
	Stop()
}

// Decoder port (interface over the continuous-decode capability). Changing
// the recognized formats requires stopping the handle and starting a new run.
type Decoder interface {
	Start(ctx context.Context, source VideoSource, formats []Format, sink EventSink) (RunHandle, error)
}
