package source

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/ivlev/fits2ser/internal/fault"
	"github.com/ivlev/fits2ser/internal/timecode"
)

// FITSSource reads the first three-dimensional image HDU of a FITS file and
// the two capture timestamps stored under StartKey and EndKey.
type FITSSource struct {
	StartKey string
	EndKey   string
}

func NewFITSSource(startKey, endKey string) *FITSSource {
	return &FITSSource{StartKey: startKey, EndKey: endKey}
}

// Load reads path into memory. Every failure is an input error.
func (s *FITSSource) Load(path string) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Input("open cube", err)
	}
	defer f.Close()

	ff, err := fitsio.Open(f)
	if err != nil {
		return nil, fault.Input("decode fits", err)
	}
	defer ff.Close()

	img, err := cubeHDU(ff)
	if err != nil {
		return nil, fault.Input("find cube", err)
	}

	hdr := img.Header()
	axes := hdr.Axes()
	cube := &Cube{
		Path:   path,
		Width:  axes[0],
		Frames: axes[1],
		Height: axes[2],
		Bitpix: hdr.Bitpix(),
		Cards:  CopyCards(hdr),
	}
	if cube.Len() == 0 {
		return nil, fault.Input("find cube", fmt.Errorf("empty cube %v", axes))
	}

	bscale, bzero := scaling(hdr)
	cube.Data, err = decodeSamples(img.Raw(), cube.Bitpix, cube.Len(), bscale, bzero, blank(hdr))
	if err != nil {
		return nil, fault.Input("read samples", err)
	}

	cube.CaptureStart, err = s.timestamp(hdr, s.StartKey)
	if err != nil {
		return nil, fault.Input("capture start", err)
	}
	cube.CaptureEnd, err = s.timestamp(hdr, s.EndKey)
	if err != nil {
		return nil, fault.Input("capture end", err)
	}
	if cube.CaptureEnd.Before(cube.CaptureStart) {
		return nil, fault.Input("capture end", fmt.Errorf("%s %s precedes %s %s",
			s.EndKey, cube.CaptureEnd.Format(timeLayout), s.StartKey, cube.CaptureStart.Format(timeLayout)))
	}

	return cube, nil
}

const timeLayout = "2006-01-02T15:04:05.000Z"

func (s *FITSSource) timestamp(hdr *fitsio.Header, key string) (time.Time, error) {
	card := hdr.Get(key)
	if card == nil {
		return time.Time{}, fmt.Errorf("missing header card %s", key)
	}
	v, ok := card.Value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("header card %s is not a string: %v", key, card.Value)
	}
	t, err := timecode.Parse(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("header card %s: %w", key, err)
	}
	return t, nil
}

// cubeHDU picks the first image HDU with three axes. Xihe RSM level-1 files
// keep the cube in extension 1 behind an empty primary HDU.
func cubeHDU(f *fitsio.File) (fitsio.Image, error) {
	for _, hdu := range f.HDUs() {
		if hdu.Type() != fitsio.IMAGE_HDU {
			continue
		}
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		if len(hdu.Header().Axes()) == 3 {
			return img, nil
		}
	}
	return nil, fmt.Errorf("no three-dimensional image HDU")
}

func scaling(hdr *fitsio.Header) (bscale, bzero float64) {
	bscale, bzero = 1, 0
	if c := hdr.Get("BSCALE"); c != nil {
		if v, ok := cardFloat(c.Value); ok {
			bscale = v
		}
	}
	if c := hdr.Get("BZERO"); c != nil {
		if v, ok := cardFloat(c.Value); ok {
			bzero = v
		}
	}
	return bscale, bzero
}

// blank returns the BLANK value of an integer image, or nil when unset.
func blank(hdr *fitsio.Header) *int64 {
	if hdr.Bitpix() < 0 {
		return nil
	}
	c := hdr.Get("BLANK")
	if c == nil {
		return nil
	}
	v, ok := cardFloat(c.Value)
	if !ok {
		return nil
	}
	b := int64(v)
	return &b
}

func cardFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

// decodeSamples converts big-endian FITS pixel bytes to physical values.
// Integer samples equal to blank are undefined and become NaN.
func decodeSamples(raw []byte, bitpix, n int, bscale, bzero float64, blank *int64) ([]float64, error) {
	size := bitpix / 8
	if size < 0 {
		size = -size
	}
	if size == 0 {
		return nil, fmt.Errorf("invalid BITPIX %d", bitpix)
	}
	if len(raw) < n*size {
		return nil, fmt.Errorf("truncated data: have %d bytes, want %d", len(raw), n*size)
	}

	out := make([]float64, n)
	be := binary.BigEndian
	for i := range out {
		b := raw[i*size:]
		var (
			v      float64
			stored int64
		)
		switch bitpix {
		case 8:
			stored = int64(b[0])
		case 16:
			stored = int64(int16(be.Uint16(b)))
		case 32:
			stored = int64(int32(be.Uint32(b)))
		case 64:
			stored = int64(be.Uint64(b))
		case -32:
			v = float64(math.Float32frombits(be.Uint32(b)))
		case -64:
			v = math.Float64frombits(be.Uint64(b))
		default:
			return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
		}
		if bitpix > 0 {
			if blank != nil && stored == *blank {
				out[i] = math.NaN()
				continue
			}
			v = float64(stored)
		}
		out[i] = bzero + bscale*v
	}
	return out, nil
}

// structural lists keywords that describe the data layout rather than the
// observation; they are regenerated whenever a new HDU is written.
var structural = map[string]bool{
	"SIMPLE": true, "XTENSION": true, "BITPIX": true, "NAXIS": true,
	"EXTEND": true, "PCOUNT": true, "GCOUNT": true, "END": true,
	"BZERO": true, "BSCALE": true, "BLANK": true,
	"CHECKSUM": true, "DATASUM": true,
}

// commentary keywords may repeat within one header.
var commentary = map[string]bool{"COMMENT": true, "HISTORY": true, "": true}

// CopyCards returns the observation cards of hdr, in order, without
// structural keywords. COMMENT, HISTORY and blank cards are all kept; of a
// repeated value keyword only the first is kept.
func CopyCards(hdr *fitsio.Header) []fitsio.Card {
	all := headerCards(hdr)
	cards := make([]fitsio.Card, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, card := range all {
		name := strings.ToUpper(strings.TrimSpace(card.Name))
		if structural[name] || strings.HasPrefix(name, "NAXIS") {
			continue
		}
		if !commentary[name] {
			if seen[name] {
				continue
			}
			seen[name] = true
		}
		cards = append(cards, card)
	}
	return cards
}

// headerCards lists every card of hdr. Header.Keys leaves out commentary
// cards, so its length cannot bound Header.Card.
func headerCards(hdr *fitsio.Header) []fitsio.Card {
	var cards []fitsio.Card
	for i := 0; ; i++ {
		card, ok := cardAt(hdr, i)
		if !ok {
			return cards
		}
		cards = append(cards, *card)
	}
}

func cardAt(hdr *fitsio.Header, i int) (card *fitsio.Card, ok bool) {
	defer func() {
		if recover() != nil {
			card, ok = nil, false
		}
	}()
	card = hdr.Card(i)
	return card, card != nil
}
