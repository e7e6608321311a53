package slicer

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/source"
)

// Unsigned 16-bit samples are stored as signed BITPIX 16 offset by BZERO.
const uint16Zero = 32768

// Frame is one decoded 16-bit frame file.
type Frame struct {
	Width   int
	Height  int
	Samples []uint16

	// Cards is the frame header minus structural keywords.
	Cards []fitsio.Card
}

// WriteFrame writes samples as a primary 16-bit image HDU carrying cards.
func WriteFrame(path string, samples []uint16, width, height int, cards []fitsio.Card) error {
	if len(samples) != width*height {
		return fault.Format("write frame", fmt.Errorf("%d samples for %dx%d frame", len(samples), width, height))
	}

	w, err := os.Create(path)
	if err != nil {
		return fault.IO("create frame", err)
	}

	if err := encodeFrame(w, samples, width, height, cards); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fault.IO("close frame", err)
	}
	return nil
}

func encodeFrame(w *os.File, samples []uint16, width, height int, cards []fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return fault.IO("create fits", err)
	}
	defer f.Close()

	img := fitsio.NewImage(16, []int{width, height})
	defer img.Close()

	hdr := []fitsio.Card{
		{Name: "BZERO", Value: uint16Zero, Comment: "offset for unsigned 16-bit data"},
		{Name: "BSCALE", Value: 1, Comment: "default scaling factor"},
	}
	if err := img.Header().Append(append(hdr, cards...)...); err != nil {
		return fault.Format("frame header", err)
	}

	data := make([]int16, len(samples))
	for i, v := range samples {
		data[i] = int16(int32(v) - uint16Zero)
	}
	if err := img.Write(data); err != nil {
		return fault.IO("write frame data", err)
	}
	if err := f.Write(img); err != nil {
		return fault.IO("write frame hdu", err)
	}
	return nil
}

// ReadFrame loads a frame written by WriteFrame.
func ReadFrame(path string) (*Frame, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fault.IO("open frame", err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fault.Format("decode frame", err)
	}
	defer f.Close()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fault.Format("decode frame", fmt.Errorf("%s: primary HDU is not an image", path))
	}
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 || hdr.Bitpix() != 16 {
		return nil, fault.Format("decode frame", fmt.Errorf("%s: want 2-D BITPIX 16 image, got BITPIX %d axes %v", path, hdr.Bitpix(), axes))
	}

	frame := &Frame{Width: axes[0], Height: axes[1], Cards: source.CopyCards(hdr)}
	n := frame.Width * frame.Height
	raw := img.Raw()
	if len(raw) < n*2 {
		return nil, fault.Format("frame payload", fmt.Errorf("%s: have %d bytes, want %d", path, len(raw), n*2))
	}

	zero := 0.0
	if c := hdr.Get("BZERO"); c != nil {
		switch v := c.Value.(type) {
		case int:
			zero = float64(v)
		case float64:
			zero = v
		}
	}

	frame.Samples = make([]uint16, n)
	for i := range frame.Samples {
		v := float64(int16(binary.BigEndian.Uint16(raw[i*2:]))) + zero
		frame.Samples[i] = uint16(math.Min(math.Max(v, 0), math.MaxUint16))
	}
	return frame, nil
}
