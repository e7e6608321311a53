package preview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 512, 100, 50},
		{2048, 1024, 512, 512, 256},
		{1000, 3000, 300, 100, 300},
		{4000, 1, 400, 400, 1},
		{800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		w, h := Size(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}
}

func TestGray16(t *testing.T) {
	img := Gray16([]uint16{0, 0x1234, 0xffff, 7}, 2, 2)
	assert.Equal(t, uint16(0x1234), img.Gray16At(1, 0).Y)
	assert.Equal(t, uint16(0xffff), img.Gray16At(0, 1).Y)
}

func TestWrite(t *testing.T) {
	const w, h = 64, 32
	samples := make([]uint16, w*h)
	for i := range samples {
		samples[i] = uint16(i * 32)
	}
	path := filepath.Join(t.TempDir(), "q.png")
	require.NoError(t, Write(path, samples, w, h, 16))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestWriteSizeMismatch(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "q.png"), []uint16{1}, 2, 2, 16))
}
