//go:build !gocv

package threshold

import "image"

// Backend names the implementation compiled into Apply.
const Backend = "go"

// Apply thresholds img with the given variant. cutoff is ignored by Otsu.
func Apply(img image.Image, t Type, cutoff uint8) *image.NRGBA {
	return applyLUT(img, t, cutoff)
}
