// Package preview renders a small 8-bit quicklook PNG of a stretched frame.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/ivlev/fits2ser/internal/fault"
)

// DefaultMaxEdge is the longest edge of a quicklook in pixels.
const DefaultMaxEdge = 512

// Gray16 wraps row-major 16-bit samples as an image.
func Gray16(samples []uint16, width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for i, v := range samples {
		img.Pix[i*2] = uint8(v >> 8)
		img.Pix[i*2+1] = uint8(v)
	}
	return img
}

// Size returns width x height scaled so the longest edge is at most maxEdge.
func Size(width, height, maxEdge int) (int, int) {
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return width, height
	}
	if width >= height {
		return maxEdge, max(1, height*maxEdge/width)
	}
	return max(1, width*maxEdge/height), maxEdge
}

// Write scales the frame down and saves it as an 8-bit grayscale PNG.
func Write(path string, samples []uint16, width, height, maxEdge int) error {
	if len(samples) != width*height {
		return fault.Format("preview", fmt.Errorf("%d samples for %dx%d frame", len(samples), width, height))
	}

	w, h := Size(width, height, maxEdge)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), Gray16(samples, width, height), image.Rect(0, 0, width, height), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fault.IO("create preview", err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fault.IO("encode preview", err)
	}
	if err := f.Close(); err != nil {
		return fault.IO("close preview", err)
	}
	return nil
}
