package render

import (
	"sync"

	"github.com/bryanwahyu/lenscan/internal/domain/overlay"
)

// MemCanvas is a headless canvas: it records the current drawing state so the
// rendering frontend can poll it over the API.
type MemCanvas struct {
	mu       sync.Mutex
	width    int
	height   int
	commands []overlay.Command
}

func NewMemCanvas() *MemCanvas {
	return &MemCanvas{}
}

func (c *MemCanvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *MemCanvas) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
	c.commands = nil
}

func (c *MemCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = nil
}

func (c *MemCanvas) Draw(cmd overlay.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
}

// Snapshot returns the canvas dimensions and a copy of the current commands.
func (c *MemCanvas) Snapshot() (int, int, []overlay.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]overlay.Command, len(c.commands))
	copy(out, c.commands)
	return c.width, c.height, out
}
