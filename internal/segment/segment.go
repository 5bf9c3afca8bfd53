// Package segment isolates plant-colored pixels from a video frame.
//
// Red hues wrap around the ends of the OpenCV hue axis, so the mask is the
// union of two hue ranges. Erosion followed by dilation strips thin stems
// while keeping the bulkier leaf bodies.
package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// HSVRange is an inclusive hue/saturation/value window in OpenCV units
// (hue 0-180, saturation and value 0-255).
type HSVRange struct {
	HueMin float64 `json:"hue_min"`
	HueMax float64 `json:"hue_max"`
	SatMin float64 `json:"sat_min"`
	SatMax float64 `json:"sat_max"`
	ValMin float64 `json:"val_min"`
	ValMax float64 `json:"val_max"`
}

// Lower returns the lower bound as a gocv scalar.
func (r HSVRange) Lower() gocv.Scalar {
	return gocv.NewScalar(r.HueMin, r.SatMin, r.ValMin, 0)
}

// Upper returns the upper bound as a gocv scalar.
func (r HSVRange) Upper() gocv.Scalar {
	return gocv.NewScalar(r.HueMax, r.SatMax, r.ValMax, 0)
}

// Zero reports whether all bounds are zero. An all-zero range is disabled.
func (r HSVRange) Zero() bool {
	return r == HSVRange{}
}

// Params configures plant segmentation.
type Params struct {
	// Range1 and Range2 together cover the red hue wrap-around. Range2 may
	// be all-zero to disable it when Range1 alone covers the foliage.
	Range1 HSVRange
	Range2 HSVRange

	// MorphIterations is the erode/dilate pass count. Fewer passes leave
	// stem fragments in the mask; more eat away small true leaves.
	MorphIterations int

	// KernelSize is the square structuring element side in pixels.
	KernelSize int
}

// DefaultParams returns segmentation parameters tuned for reddish foliage.
func DefaultParams() Params {
	return Params{
		Range1:          HSVRange{HueMin: 0, HueMax: 10, SatMin: 40, SatMax: 255, ValMin: 30, ValMax: 255},
		Range2:          HSVRange{HueMin: 160, HueMax: 180, SatMin: 40, SatMax: 255, ValMin: 30, ValMax: 255},
		MorphIterations: 3,
		KernelSize:      3,
	}
}

// Mask converts a BGR frame to HSV, applies both hue ranges, and cleans the
// result with erosion and dilation. The caller owns the returned Mat.
func Mask(frame gocv.Mat, p Params) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	mask := MaskHSV(hsv, p)
	clean(&mask, p)
	return mask
}

// MaskHSV builds the raw dual-range mask from an already-converted HSV
// image, without morphological cleanup. The caller owns the returned Mat.
func MaskHSV(hsv gocv.Mat, p Params) gocv.Mat {
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv, p.Range1.Lower(), p.Range1.Upper(), &mask)

	if !p.Range2.Zero() {
		second := gocv.NewMat()
		defer second.Close()
		gocv.InRangeWithScalar(hsv, p.Range2.Lower(), p.Range2.Upper(), &second)
		gocv.BitwiseOr(mask, second, &mask)
	}
	return mask
}

// clean erodes then dilates the mask in place. Erosion first removes
// structures narrower than the accumulated kernel reach (stems), dilation
// then regrows the surviving leaf bodies to near-original size.
func clean(mask *gocv.Mat, p Params) {
	iterations := p.MorphIterations
	if iterations <= 0 {
		return
	}
	size := p.KernelSize
	if size <= 0 {
		size = 3
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()

	for i := 0; i < iterations; i++ {
		gocv.Erode(*mask, mask, kernel)
	}
	for i := 0; i < iterations; i++ {
		gocv.Dilate(*mask, mask, kernel)
	}
}
