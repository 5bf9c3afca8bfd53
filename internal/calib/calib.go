// Package calib locks a pixels-per-millimetre ratio from a fixed-size
// reference object placed in the camera's view.
//
// The reference is found by color alone (a blue hue window by default).
// Once a ratio is locked it is never recomputed from later frames;
// recomputing per frame makes the displayed measurements flicker. The only
// transitions are uncalibrated -> locked (reference found) and
// locked -> uncalibrated (explicit reset).
package calib

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"plant-monitor/internal/segment"
)

var (
	// ErrReferenceNotFound means no qualifying reference region was visible.
	ErrReferenceNotFound = errors.New("calib: reference object not found")

	// ErrReferenceAmbiguous means more than one qualifying region matched
	// the reference color; calibration refuses to guess between them.
	ErrReferenceAmbiguous = errors.New("calib: multiple reference candidates")
)

// State is the calibration result. Physical-unit measurements are only
// meaningful while Locked is true.
type State struct {
	RatioPxPerMM float64
	Locked       bool
}

// Params configures reference object detection.
type Params struct {
	// Range is the reference object's color window.
	Range segment.HSVRange

	// WidthMM is the known physical width of the reference object.
	WidthMM float64

	// MinAreaPixels rejects color noise smaller than the reference could
	// plausibly appear.
	MinAreaPixels float64
}

// DefaultParams returns detection parameters for a 10 mm blue reference tab.
func DefaultParams() Params {
	return Params{
		Range:         segment.HSVRange{HueMin: 90, HueMax: 130, SatMin: 70, SatMax: 255, ValMin: 50, ValMax: 255},
		WidthMM:       10,
		MinAreaPixels: 200,
	}
}

// Reference is a located reference object.
type Reference struct {
	Bounds image.Rectangle
	Area   float64
}

// Locate finds the reference object in a BGR frame without locking a ratio.
// It is also used to draw the confirmation box after calibration.
func Locate(frame gocv.Mat, p Params) (Reference, error) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, p.Range.Lower(), p.Range.Upper(), &mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var found Reference
	candidates := 0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area < p.MinAreaPixels {
			continue
		}
		candidates++
		if candidates > 1 {
			return Reference{}, ErrReferenceAmbiguous
		}
		found = Reference{Bounds: gocv.BoundingRect(contours.At(i)), Area: area}
	}

	if candidates == 0 {
		return Reference{}, ErrReferenceNotFound
	}
	return found, nil
}

// Calibrate locates the reference object and computes a locked ratio from
// its pixel width and known physical width.
func Calibrate(frame gocv.Mat, p Params) (State, Reference, error) {
	ref, err := Locate(frame, p)
	if err != nil {
		return State{}, Reference{}, err
	}

	width := ref.Bounds.Dx()
	if width <= 0 || p.WidthMM <= 0 {
		return State{}, ref, ErrReferenceNotFound
	}

	return State{RatioPxPerMM: float64(width) / p.WidthMM, Locked: true}, ref, nil
}
