package scan

import "errors"

// Capture errors are the only failures that cross the component boundary.
// Frame misses are not errors and never surface.
var (
	ErrPermissionDenied = errors.New("capture permission denied")
	ErrNoDevice         = errors.New("no capture device found")
	ErrUnsupported      = errors.New("capture unsupported in this environment")
)
