package overlay

import "github.com/golang/geo/r2"

// Shape enum
type Shape string

const (
	ShapePolygon Shape = "polygon"
	ShapeLine    Shape = "line"
)

// Command is one drawing instruction for the frontend canvas. Area-class
// codes produce a closed filled polygon over all reported points; line-class
// codes produce a single glowing segment from the first to the last point.
type Command struct {
	Shape  Shape      `json:"shape"`
	Points []r2.Point `json:"points"`
	Glow   bool       `json:"glow,omitempty"`
}

// Canvas port (interface over the drawing surface)
type Canvas interface {
	Size() (width, height int)
	SetSize(width, height int)
	Clear()
	Draw(cmd Command)
}
