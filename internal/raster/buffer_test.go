package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, New(3, 2).Validate())
	require.NoError(t, New(0, 0).Validate())

	for _, b := range []*Buffer{
		nil,
		{Width: 2, Height: 2, Pix: make([]byte, 15)},
		{Width: -1, Height: -4, Pix: make([]byte, 16)},
	} {
		require.ErrorIs(t, b.Validate(), ErrDimensionMismatch)
	}
}

func TestWrap(t *testing.T) {
	pix := make([]byte, 8)
	b, err := Wrap(2, 1, pix)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Offset(1, 0))

	_, err = Wrap(3, 1, pix)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCloneIsDeep(t *testing.T) {
	b := New(1, 1)
	c := b.Clone()
	c.Pix[0] = 42
	assert.EqualValues(t, 0, b.Pix[0])
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 0, Luminance(0, 0, 0), 1e-9)
	assert.InDelta(t, 255, Luminance(255, 255, 255), 1e-9)
	assert.InDelta(t, 0.299*200, Luminance(200, 0, 0), 1e-9)
	assert.InDelta(t, 128, Luminance(128, 128, 128), 1e-9)
}
