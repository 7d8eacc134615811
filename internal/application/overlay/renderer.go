package overlay

import (
	"github.com/golang/geo/r2"

	domain "github.com/bryanwahyu/lenscan/internal/domain/overlay"
	"github.com/bryanwahyu/lenscan/internal/domain/scan"
)

// Renderer maps decode geometry to drawing commands on a canvas kept in sync
// with the live frame dimensions.
type Renderer struct {
	Canvas domain.Canvas
}

func NewRenderer(c domain.Canvas) *Renderer {
	return &Renderer{Canvas: c}
}

// Render clears the canvas and draws the highlight for one decode event.
// Area-class formats become a filled polygon over all points in order;
// line-class formats become a glowing segment from the first point to the
// last. Fewer than 2 points on a line code draws nothing.
func (r *Renderer) Render(points []r2.Point, format scan.Format, frameWidth, frameHeight int) {
	w, h := r.Canvas.Size()
	if w != frameWidth || h != frameHeight {
		r.Canvas.SetSize(frameWidth, frameHeight)
	}
	r.Canvas.Clear()

	if format.IsArea() {
		if len(points) == 0 {
			return
		}
		r.Canvas.Draw(domain.Command{Shape: domain.ShapePolygon, Points: points})
		return
	}

	if len(points) < 2 {
		return
	}
	r.Canvas.Draw(domain.Command{
		Shape:  domain.ShapeLine,
		Points: []r2.Point{points[0], points[len(points)-1]},
		Glow:   true,
	})
}

// Clear wipes the canvas, used when scanning pauses.
func (r *Renderer) Clear() {
	r.Canvas.Clear()
}
