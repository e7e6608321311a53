// Package fitstest writes small synthetic FITS cubes for tests.
package fitstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"
)

// Cube describes a float32 cube with axes (height, frames, width).
type Cube struct {
	Width, Height, Frames int

	// Start and End are written under STR_TIME and END_TIME unless empty.
	Start, End string

	// Extra cards appended after the timestamps.
	Cards []fitsio.Card

	// Value returns the sample at (y, f, x). Defaults to a ramp.
	Value func(y, f, x int) float32

	// Bitpix is -32 (default) or 16. 16-bit samples are Value truncated.
	Bitpix int

	// Extension puts the cube behind an empty primary HDU.
	Extension bool
}

// Write creates dir/name holding c as the primary HDU and returns the path.
func Write(t testing.TB, dir, name string, c Cube) string {
	t.Helper()

	value := c.Value
	if value == nil {
		value = func(y, f, x int) float32 { return float32((y*c.Frames+f)*c.Width + x) }
	}
	data := make([]float32, 0, c.Width*c.Height*c.Frames)
	for y := 0; y < c.Height; y++ {
		for f := 0; f < c.Frames; f++ {
			for x := 0; x < c.Width; x++ {
				data = append(data, value(y, f, x))
			}
		}
	}

	var cards []fitsio.Card
	if c.Start != "" {
		cards = append(cards, fitsio.Card{Name: "STR_TIME", Value: c.Start, Comment: "capture start"})
	}
	if c.End != "" {
		cards = append(cards, fitsio.Card{Name: "END_TIME", Value: c.End, Comment: "capture end"})
	}
	cards = append(cards, c.Cards...)

	path := filepath.Join(dir, name)
	w, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatalf("fitsio create: %v", err)
	}
	defer f.Close()

	if c.Extension {
		phdu, err := fitsio.NewPrimaryHDU(nil)
		if err != nil {
			t.Fatalf("primary hdu: %v", err)
		}
		if err := f.Write(phdu); err != nil {
			t.Fatalf("write primary hdu: %v", err)
		}
	}

	bitpix := c.Bitpix
	if bitpix == 0 {
		bitpix = -32
	}
	img := fitsio.NewImage(bitpix, []int{c.Width, c.Frames, c.Height})
	defer img.Close()

	if len(cards) > 0 {
		if err := img.Header().Append(cards...); err != nil {
			t.Fatalf("append cards: %v", err)
		}
	}
	var pixels any = data
	if bitpix == 16 {
		ints := make([]int16, len(data))
		for i, v := range data {
			ints[i] = int16(v)
		}
		pixels = ints
	}
	if err := img.Write(pixels); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := f.Write(img); err != nil {
		t.Fatalf("write hdu: %v", err)
	}
	return path
}
