package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// MJPEGSource reads frames from an MJPEG-over-HTTP stream, the transport IP
// cameras commonly expose. Torch control is an optional second endpoint on
// the camera; the capability exists only when TorchURL is set.
type MJPEGSource struct {
	StreamURL string
	TorchURL  string
	Client    *http.Client

	mu     sync.Mutex
	resp   *http.Response
	parts  *multipart.Reader
	width  int
	height int
}

func NewMJPEGSource(streamURL, torchURL string) *MJPEGSource {
	return &MJPEGSource{
		StreamURL: streamURL,
		TorchURL:  torchURL,
		Client:    &http.Client{},
	}
}

// Open connects to the stream and maps transport failures onto the typed
// capture errors the scan view treats as fatal.
func (s *MJPEGSource) Open(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.StreamURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", scan.ErrUnsupported, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		// refused/unreachable/no such host all mean no camera to talk to
		var uerr *url.Error
		if errors.As(err, &uerr) && ctx.Err() == nil {
			return fmt.Errorf("%w: %v", scan.ErrNoDevice, err)
		}
		return fmt.Errorf("capture connect: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return fmt.Errorf("%w: stream returned %d", scan.ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return fmt.Errorf("%w: stream returned 404", scan.ErrNoDevice)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return fmt.Errorf("capture connect: unexpected status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return fmt.Errorf("%w: content type %q is not an MJPEG stream", scan.ErrUnsupported, resp.Header.Get("Content-Type"))
	}

	s.mu.Lock()
	s.resp = resp
	s.parts = multipart.NewReader(resp.Body, params["boundary"])
	s.mu.Unlock()
	return nil
}

// NextFrame reads the next JPEG part from the stream.
func (s *MJPEGSource) NextFrame(ctx context.Context) (scan.Frame, error) {
	s.mu.Lock()
	parts := s.parts
	s.mu.Unlock()
	if parts == nil {
		return scan.Frame{}, fmt.Errorf("capture source not open")
	}

	part, err := parts.NextPart()
	if err != nil {
		if ctx.Err() != nil {
			return scan.Frame{}, ctx.Err()
		}
		return scan.Frame{}, fmt.Errorf("stream ended: %w", err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return scan.Frame{}, fmt.Errorf("frame read: %w", err)
	}

	width, height := s.width, s.height
	if cfg, err := jpeg.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
		s.mu.Lock()
		s.width, s.height = width, height
		s.mu.Unlock()
	}

	return scan.Frame{Width: width, Height: height, Pixels: data}, nil
}

// Close releases the stream connection.
func (s *MJPEGSource) Close() error {
	s.mu.Lock()
	resp := s.resp
	s.resp = nil
	s.parts = nil
	s.mu.Unlock()

	if resp != nil {
		return resp.Body.Close()
	}
	return nil
}

// TorchSupported implements scan.TorchController.
func (s *MJPEGSource) TorchSupported() bool { return s.TorchURL != "" }

// SetTorch toggles the camera torch endpoint.
func (s *MJPEGSource) SetTorch(ctx context.Context, on bool) error {
	if s.TorchURL == "" {
		return fmt.Errorf("torch endpoint not configured")
	}

	state := "off"
	if on {
		state = "on"
	}
	u := s.TorchURL
	if strings.Contains(u, "?") {
		u += "&state=" + state
	} else {
		u += "?state=" + state
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("torch endpoint returned %d", resp.StatusCode)
	}
	return nil
}
