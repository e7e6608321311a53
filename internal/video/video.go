package video

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/slicer"
	"github.com/ivlev/fits2ser/internal/system"
)

// VideoEncoder turns an ordered list of frame files into one video file.
type VideoEncoder interface {
	Encode(framePaths []string, videoPath string, params Params) (*Result, error)
}

// Params describes the video being written.
type Params struct {
	Width      int
	Height     int
	ColorID    uint32
	Observer   string
	Instrument string
	Telescope  string

	// HeaderTicks fills both header timestamp fields.
	HeaderTicks int64
	// Timestamps is the per-frame trailer; nil writes no trailer.
	Timestamps []int64
}

// Result reports what was written.
type Result struct {
	Path   string
	Frames int
	Bytes  int64
}

// SEREncoder writes SER files frame by frame, reading each frame from disk.
type SEREncoder struct {
	// ReadFrame loads one frame file. Defaults to slicer.ReadFrame.
	ReadFrame func(path string) (*slicer.Frame, error)
}

func NewSEREncoder() *SEREncoder {
	return &SEREncoder{ReadFrame: slicer.ReadFrame}
}

// Encode writes header, frames in the given order, then the timestamp trailer.
func (e *SEREncoder) Encode(framePaths []string, videoPath string, params Params) (*Result, error) {
	if params.Timestamps != nil && len(params.Timestamps) != len(framePaths) {
		return nil, fault.Format("encode video", fmt.Errorf("%d timestamps for %d frames", len(params.Timestamps), len(framePaths)))
	}
	if err := os.MkdirAll(filepath.Dir(videoPath), 0755); err != nil {
		return nil, fault.IO("create video dir", err)
	}

	f, err := os.Create(videoPath)
	if err != nil {
		return nil, fault.IO("create video", err)
	}

	res, err := e.write(f, framePaths, videoPath, params)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fault.IO("close video", err)
	}
	return res, nil
}

func (e *SEREncoder) write(f *os.File, framePaths []string, videoPath string, params Params) (*Result, error) {
	read := e.ReadFrame
	if read == nil {
		read = slicer.ReadFrame
	}

	w := bufio.NewWriterSize(f, 1<<20)
	hdr := NewHeader(params, len(framePaths))
	if err := WriteHeader(w, hdr); err != nil {
		return nil, fault.IO("write header", err)
	}
	written := int64(HeaderSize)

	frameBytes := params.Width * params.Height * 2
	buf := system.GetBuffer(frameBytes)
	defer system.PutBuffer(buf)

	for _, path := range framePaths {
		frame, err := read(path)
		if err != nil {
			return nil, err
		}
		if frame.Width != params.Width || frame.Height != params.Height || len(frame.Samples)*2 != frameBytes {
			return nil, fault.Format("frame payload", fmt.Errorf("%s: %dx%d (%d samples), video is %dx%d",
				filepath.Base(path), frame.Width, frame.Height, len(frame.Samples), params.Width, params.Height))
		}

		for i, v := range frame.Samples {
			binary.LittleEndian.PutUint16(buf[i*2:], v)
		}
		if _, err := w.Write(buf[:frameBytes]); err != nil {
			return nil, fault.IO("write frame payload", err)
		}
		written += int64(frameBytes)
	}

	if params.Timestamps != nil {
		var tb [8]byte
		for _, ts := range params.Timestamps {
			binary.LittleEndian.PutUint64(tb[:], uint64(ts))
			if _, err := w.Write(tb[:]); err != nil {
				return nil, fault.IO("write timestamps", err)
			}
		}
		written += int64(len(params.Timestamps)) * 8
	}

	if err := w.Flush(); err != nil {
		return nil, fault.IO("flush video", err)
	}
	return &Result{Path: videoPath, Frames: len(framePaths), Bytes: written}, nil
}
