package video

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Signature opens every SER file.
	Signature = "LUCAM-RECORDER"
	// HeaderSize is the fixed size of the SER header in bytes.
	HeaderSize = 178
	// PixelDepth is the only bit depth written.
	PixelDepth = 16

	textFieldSize = 40
)

// SER color identifiers.
const (
	ColorMono = 0
	ColorRGB  = 100
	ColorBGR  = 101
)

// Header mirrors the on-disk SER header field by field.
type Header struct {
	FileID       [14]byte
	LuID         uint32
	ColorID      uint32
	LittleEndian uint32 // 0 = little endian pixel data
	Width        uint32
	Height       uint32
	PixelDepth   uint32
	FrameCount   uint32
	Observer     [textFieldSize]byte
	Instrument   [textFieldSize]byte
	Telescope    [textFieldSize]byte
	DateTime     uint64
	DateTimeUTC  uint64
}

// NewHeader fills a header for frames 16-bit frames described by p.
func NewHeader(p Params, frames int) Header {
	h := Header{
		ColorID:     p.ColorID,
		Width:       uint32(p.Width),
		Height:      uint32(p.Height),
		PixelDepth:  PixelDepth,
		FrameCount:  uint32(frames),
		DateTime:    uint64(p.HeaderTicks),
		DateTimeUTC: uint64(p.HeaderTicks),
	}
	copy(h.FileID[:], Signature)
	h.Observer = textField(p.Observer)
	h.Instrument = textField(p.Instrument)
	h.Telescope = textField(p.Telescope)
	return h
}

// textField zero-pads s to 40 bytes, truncating longer values.
func textField(s string) [textFieldSize]byte {
	var b [textFieldSize]byte
	copy(b[:], s)
	return b
}

// Text returns a fixed-width text field without its zero padding.
func Text(b [textFieldSize]byte) string {
	return strings.TrimRight(string(b[:]), "\x00")
}

// WriteHeader writes h little-endian.
func WriteHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, &h)
}

// ReadHeader reads and checks a SER header.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("read ser header: %w", err)
	}
	if string(h.FileID[:]) != Signature {
		return h, fmt.Errorf("read ser header: bad signature %q", h.FileID[:])
	}
	return h, nil
}

// FrameSize returns the payload size of one frame in bytes.
func (h Header) FrameSize() int64 {
	return int64(h.Width) * int64(h.Height) * int64(h.PixelDepth/8)
}

// ReadTimestamps reads the trailer of a SER file of the given total size.
// It returns nil when the file carries no trailer.
func ReadTimestamps(r io.ReaderAt, size int64) ([]int64, error) {
	h, err := ReadHeader(io.NewSectionReader(r, 0, HeaderSize))
	if err != nil {
		return nil, err
	}
	offset := HeaderSize + int64(h.FrameCount)*h.FrameSize()
	switch trailer := size - offset; {
	case trailer == 0:
		return nil, nil
	case trailer != int64(h.FrameCount)*8:
		return nil, fmt.Errorf("read ser trailer: %d trailing bytes for %d frames", trailer, h.FrameCount)
	}

	out := make([]int64, h.FrameCount)
	sr := io.NewSectionReader(r, offset, int64(h.FrameCount)*8)
	if err := binary.Read(sr, binary.LittleEndian, out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read ser trailer: truncated")
		}
		return nil, fmt.Errorf("read ser trailer: %w", err)
	}
	return out, nil
}
