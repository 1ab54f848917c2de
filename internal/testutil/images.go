package testutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// Gradient returns a horizontal gray ramp from 0 on the left to 255 on the
// right.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		v := uint8(0)
		if w > 1 {
			v = uint8(x * 255 / (w - 1))
		}
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// WriteImage encodes img to path, choosing the format by extension.
func WriteImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, imaging.Save(img, path))
}

// ReadGray opens the image at path and returns the red channel of every
// pixel, row by row. Threshold outputs carry R=G=B.
func ReadGray(t *testing.T, path string) [][]uint8 {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	rows := make([][]uint8, b.Dy())
	for y := range rows {
		rows[y] = make([]uint8, b.Dx())
		for x := range rows[y] {
			rows[y][x] = nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y).R
		}
	}
	return rows
}
