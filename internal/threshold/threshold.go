// Package threshold implements global binarization of images.
//
// Apply converts an image to BT.601 luma, thresholds it with one of six
// variants using 8-bit semantics with a maximum value of 255, and returns an
// opaque RGB image whose channels are equal. The function is pure: the same
// image, type and cutoff always produce the same pixels.
//
// Building with the gocv tag routes Apply through OpenCV.
package threshold

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// Type selects the thresholding variant.
type Type int

const (
	// Binary sets pixels above the cutoff to 255 and the rest to 0.
	Binary Type = iota
	// BinaryInv sets pixels above the cutoff to 0 and the rest to 255.
	BinaryInv
	// Trunc limits pixels above the cutoff to the cutoff.
	Trunc
	// ToZero zeroes pixels at or below the cutoff.
	ToZero
	// ToZeroInv zeroes pixels above the cutoff.
	ToZeroInv
	// Otsu picks the cutoff from the image histogram and applies Binary.
	Otsu
)

var typeNames = [...]string{
	Binary:    "THRESH_BINARY",
	BinaryInv: "THRESH_BINARY_INV",
	Trunc:     "THRESH_TRUNC",
	ToZero:    "THRESH_TOZERO",
	ToZeroInv: "THRESH_TOZERO_INV",
	Otsu:      "THRESH_OTSU",
}

// Types returns every variant in menu order. The first is the default.
func Types() []Type {
	return []Type{Binary, BinaryInv, Trunc, ToZero, ToZeroInv, Otsu}
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType resolves a variant by name.
func ParseType(name string) (Type, error) {
	for _, t := range Types() {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown threshold type %q", name)
}

// OtsuLevel computes the cutoff that maximizes the between-class variance
// of the image's luma histogram. The image is expected to be gray already;
// only its red channel is read. Images with fewer than two distinct levels
// yield 0.
func OtsuLevel(gray image.Image) uint8 {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	total := 0
	sum := 0.0
	for i, n := range bins {
		total += n
		sum += float64(i) * float64(n)
	}
	if total == 0 {
		return 0
	}

	const epsilon = 1.1920929e-07
	scale := 1.0 / float64(total)
	mu := sum * scale

	var q1, mu1, maxSigma float64
	level := 0
	for i, n := range bins {
		p := float64(n) * scale
		mu1 *= q1
		q1 += p
		q2 := 1 - q1
		if min(q1, q2) < epsilon || max(q1, q2) > 1-epsilon {
			continue
		}
		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			level = i
		}
	}
	return uint8(level)
}

// table builds the 256-entry lookup table of a variant at a fixed cutoff.
func table(t Type, cutoff uint8) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		v := uint8(i)
		above := v > cutoff
		switch t {
		case Binary, Otsu:
			if above {
				lut[i] = 255
			}
		case BinaryInv:
			if !above {
				lut[i] = 255
			}
		case Trunc:
			lut[i] = min(v, cutoff)
		case ToZero:
			if above {
				lut[i] = v
			}
		case ToZeroInv:
			if !above {
				lut[i] = v
			}
		}
	}
	return lut
}

// applyLUT is the pure Go implementation behind Apply.
func applyLUT(img image.Image, t Type, cutoff uint8) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if t == Otsu {
		cutoff = OtsuLevel(gray)
	}
	return recolor(gray, table(t, cutoff))
}

// recolor maps the red channel of a gray NRGBA image through lut into a new
// opaque image.
func recolor(gray *image.NRGBA, lut [256]uint8) *image.NRGBA {
	out := image.NewNRGBA(gray.Rect)
	for i := 0; i+3 < len(gray.Pix); i += 4 {
		v := lut[gray.Pix[i]]
		out.Pix[i+0] = v
		out.Pix[i+1] = v
		out.Pix[i+2] = v
		out.Pix[i+3] = 0xff
	}
	return out
}
