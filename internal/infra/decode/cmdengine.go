package decode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// noMatchExit is the engine's exit code for a frame with no detectable code.
const noMatchExit = 4

// CommandEngine shells out to an external decode binary per frame. The
// engine receives the frame as a JPEG file plus the recognized symbologies
// and prints a single JSON object on success:
//
//	{"data":"...","format":"QR_CODE","points":[[12,34],[56,34],[56,78],[12,78]]}
type CommandEngine struct {
	Command string
	Args    []string
}

func NewCommandEngine(command string, args ...string) *CommandEngine {
	return &CommandEngine{Command: command, Args: args}
}

func (e *CommandEngine) DecodeFrame(ctx context.Context, frame scan.Frame, formats []scan.Format) (*scan.Event, error) {
	f, err := os.CreateTemp("", "lenscan-frame-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("frame temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(frame.Pixels); err != nil {
		f.Close()
		return nil, fmt.Errorf("frame write: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	names := make([]string, len(formats))
	for i, fm := range formats {
		names[i] = string(fm)
	}

	args := append([]string{}, e.Args...)
	args = append(args, "--formats", strings.Join(names, ","), path)
	cmd := exec.CommandContext(ctx, e.Command, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == noMatchExit {
			return nil, nil
		}
		return nil, fmt.Errorf("engine run error: %v, output=%s", err, string(out))
	}

	var body struct {
		Data   string       `json:"data"`
		Format string       `json:"format"`
		Points [][2]float64 `json:"points"`
	}
	if err := json.Unmarshal(out, &body); err != nil {
		return nil, fmt.Errorf("engine output parse: %w, output=%s", err, string(out))
	}
	if body.Data == "" {
		return nil, nil
	}

	points := make([]r2.Point, len(body.Points))
	for i, p := range body.Points {
		points[i] = r2.Point{X: p[0], Y: p[1]}
	}

	return &scan.Event{
		Data:   body.Data,
		Format: scan.Format(body.Format),
		Points: points,
	}, nil
}
