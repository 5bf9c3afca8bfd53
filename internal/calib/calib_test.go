package calib

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

var blue = color.RGBA{B: 255, A: 255}

// refFrame returns a black frame with blue rectangles drawn at the given
// bounds. BGR blue lands at hue 120, inside the default reference window.
func refFrame(rects ...image.Rectangle) gocv.Mat {
	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	for _, r := range rects {
		gocv.Rectangle(&frame, r, blue, -1)
	}
	return frame
}

func TestCalibrate_LocksRatioFromReferenceWidth(t *testing.T) {
	frame := refFrame(image.Rect(100, 100, 150, 120))
	defer frame.Close()

	st, ref, err := Calibrate(frame, DefaultParams())
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if !st.Locked {
		t.Fatal("state not locked")
	}

	// 50 px wide reference, 10 mm known width.
	want := float64(ref.Bounds.Dx()) / 10.0
	if math.Abs(st.RatioPxPerMM-want) > 1e-9 {
		t.Errorf("ratio = %v, want %v", st.RatioPxPerMM, want)
	}
	if ref.Bounds.Dx() < 48 || ref.Bounds.Dx() > 52 {
		t.Errorf("reference width = %d px, want about 50", ref.Bounds.Dx())
	}
}

func TestCalibrate_NoReference(t *testing.T) {
	frame := refFrame()
	defer frame.Close()

	_, _, err := Calibrate(frame, DefaultParams())
	if !errors.Is(err, ErrReferenceNotFound) {
		t.Errorf("err = %v, want ErrReferenceNotFound", err)
	}
}

func TestCalibrate_AmbiguousReference(t *testing.T) {
	frame := refFrame(image.Rect(20, 20, 70, 40), image.Rect(200, 150, 260, 180))
	defer frame.Close()

	_, _, err := Calibrate(frame, DefaultParams())
	if !errors.Is(err, ErrReferenceAmbiguous) {
		t.Errorf("err = %v, want ErrReferenceAmbiguous", err)
	}
}

func TestLocate_IgnoresSubThresholdNoise(t *testing.T) {
	// One real reference plus a speck well under the area floor.
	frame := refFrame(image.Rect(100, 100, 150, 120), image.Rect(10, 10, 14, 14))
	defer frame.Close()

	ref, err := Locate(frame, DefaultParams())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if ref.Bounds.Min.X < 90 {
		t.Errorf("located noise speck instead of reference: %v", ref.Bounds)
	}
}
