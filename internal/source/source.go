package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/astrogo/fitsio"
)

// Source loads image cubes.
type Source interface {
	Load(path string) (*Cube, error)
}

// Cube is a 3-D stack of frames read from one file. Samples are stored with
// axes (height, frame, width): sample (y, f, x) lives at (y*Frames+f)*Width+x.
type Cube struct {
	Path   string
	Width  int
	Height int
	Frames int
	Bitpix int
	Data   []float64

	// Cards is the source header minus structural keywords.
	Cards []fitsio.Card

	CaptureStart time.Time
	CaptureEnd   time.Time
}

// Len returns the number of samples in the cube.
func (c *Cube) Len() int {
	return c.Width * c.Height * c.Frames
}

// FrameSize returns the number of samples in one frame.
func (c *Cube) FrameSize() int {
	return c.Width * c.Height
}

// Card returns the header card with the given name.
func (c *Cube) Card(name string) (fitsio.Card, bool) {
	for _, card := range c.Cards {
		if card.Name == name {
			return card, true
		}
	}
	return fitsio.Card{}, false
}

// Text returns the value of a string card, or "" when absent.
func (c *Cube) Text(name string) string {
	card, ok := c.Card(name)
	if !ok {
		return ""
	}
	if s, ok := card.Value.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(card.Value)
}
