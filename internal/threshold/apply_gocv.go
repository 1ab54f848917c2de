//go:build gocv

package threshold

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Backend names the implementation compiled into Apply.
const Backend = "opencv"

var cvTypes = map[Type]gocv.ThresholdType{
	Binary:    gocv.ThresholdBinary,
	BinaryInv: gocv.ThresholdBinaryInv,
	Trunc:     gocv.ThresholdTrunc,
	ToZero:    gocv.ThresholdToZero,
	ToZeroInv: gocv.ThresholdToZeroInv,
	Otsu:      gocv.ThresholdBinary | gocv.ThresholdOtsu,
}

// Apply thresholds img with the given variant using OpenCV. cutoff is
// ignored by Otsu. Images OpenCV cannot ingest go through the pure Go path.
func Apply(img image.Image, t Type, cutoff uint8) *image.NRGBA {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return applyLUT(img, t, cutoff)
	}
	defer src.Close()

	gray, err := toGray(src)
	if err != nil {
		return applyLUT(img, t, cutoff)
	}
	defer gray.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(gray, &dst, float32(cutoff), 255, cvTypes[t])

	out, err := dst.ToImage()
	if err != nil {
		return applyLUT(img, t, cutoff)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return applyLUT(img, t, cutoff)
	}

	nrgba := image.NewNRGBA(g.Rect)
	for y := 0; y < g.Rect.Dy(); y++ {
		for x := 0; x < g.Rect.Dx(); x++ {
			v := g.Pix[y*g.Stride+x]
			i := y*nrgba.Stride + x*4
			nrgba.Pix[i+0], nrgba.Pix[i+1], nrgba.Pix[i+2], nrgba.Pix[i+3] = v, v, v, 0xff
		}
	}
	return nrgba
}

// toGray converts a Mat from gocv.ImageToMatRGBA to one channel. That call
// yields BGRA only for RGBA and NRGBA sources and BGR for everything else.
func toGray(src gocv.Mat) (gocv.Mat, error) {
	switch src.Channels() {
	case 1:
		return src.Clone(), nil
	case 3:
		gray := gocv.NewMat()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		return gray, nil
	case 4:
		gray := gocv.NewMat()
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
		return gray, nil
	default:
		return gocv.Mat{}, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}
