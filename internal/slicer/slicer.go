// Package slicer splits a stretched cube into per-frame 16-bit FITS files
// and reads them back for encoding.
package slicer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/source"
)

// FramePath returns dir/<base>_<index+1 as %04d><ext>.
func FramePath(dir, base string, index int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%04d%s", base, index+1, ext))
}

// Extract copies frame i out of stretched, which must be laid out like
// cube.Data. The result is row-major, height rows of width samples.
func Extract(cube *source.Cube, stretched []uint16, i int) []uint16 {
	w, h, n := cube.Width, cube.Height, cube.Frames
	frame := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		src := (y*n + i) * w
		copy(frame[y*w:(y+1)*w], stretched[src:src+w])
	}
	return frame
}

// Slicer writes every frame of a cube to its own file.
type Slicer struct {
	Ext string
}

func New(ext string) *Slicer {
	return &Slicer{Ext: ext}
}

// Slice writes frames 0..Frames-1 in order into dir and returns the paths in
// write order. onFrame, if set, is called after each frame is on disk. On
// failure the paths written so far are returned with the error.
func (s *Slicer) Slice(cube *source.Cube, stretched []uint16, dir, base string, onFrame func(index int, path string)) ([]string, error) {
	if len(stretched) != cube.Len() {
		return nil, fault.Format("slice", fmt.Errorf("stretched data has %d samples, cube has %d", len(stretched), cube.Len()))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fault.IO("create output dir", err)
	}

	paths := make([]string, 0, cube.Frames)
	for i := 0; i < cube.Frames; i++ {
		path := FramePath(dir, base, i, s.Ext)
		frame := Extract(cube, stretched, i)
		if err := WriteFrame(path, frame, cube.Width, cube.Height, cube.Cards); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		if onFrame != nil {
			onFrame(i, path)
		}
	}
	return paths, nil
}
