package measure

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"plant-monitor/internal/calib"
)

// Overlay colors. gocv converts color.RGBA to BGR order internally.
var (
	envelopeColor = color.RGBA{G: 255, A: 255}
	leafColor     = color.RGBA{R: 255, G: 255, A: 255}
	refColor      = color.RGBA{B: 255, A: 255}
	alertColor    = color.RGBA{R: 255, A: 255}
)

// Annotate returns a copy of the frame with the measurement overlay drawn:
// a green box around the whole-plant envelope, a yellow labeled box per
// leaf, a blue box around the reference object when one was located, and a
// warning banner while uncalibrated. The source frame is never modified;
// the caller owns the returned Mat.
func Annotate(frame gocv.Mat, m Measurement, ref *calib.Reference) gocv.Mat {
	out := frame.Clone()

	if ref != nil {
		gocv.Rectangle(&out, ref.Bounds, refColor, 2)
		gocv.PutText(&out, "Ref Object", image.Pt(ref.Bounds.Min.X, ref.Bounds.Min.Y-10),
			gocv.FontHersheySimplex, 0.5, refColor, 2)
	}

	if !m.Valid {
		gocv.PutText(&out, "Cannot find reference object - uncalibrated", image.Pt(20, 30),
			gocv.FontHersheySimplex, 0.7, alertColor, 2)
		return out
	}

	if len(m.Leaves) > 0 {
		gocv.Rectangle(&out, m.Envelope, envelopeColor, 2)
	}
	for _, lf := range m.Leaves {
		gocv.Rectangle(&out, lf.Bounds, leafColor, 2)
		gocv.PutText(&out, lf.Label, image.Pt(lf.Bounds.Min.X, lf.Bounds.Min.Y-10),
			gocv.FontHersheySimplex, 0.5, leafColor, 2)
	}

	return out
}
