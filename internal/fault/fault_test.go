package fault

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"input", Input("open", os.ErrNotExist), KindInput},
		{"format", Format("frame", errors.New("short payload")), KindFormat},
		{"wrapped io", fmt.Errorf("job: %w", IO("mkdir", os.ErrPermission)), KindIO},
		{"config", Config("submit", errors.New("busy")), KindConfig},
		{"untagged", errors.New("plain"), KindIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := Input("open cube", os.ErrNotExist)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, Is(err, KindInput))
	assert.False(t, Is(err, KindIO))
	assert.Equal(t, "input error: open cube: file does not exist", err.Error())
}

func TestNilPassthrough(t *testing.T) {
	assert.NoError(t, IO("write", nil))
}
