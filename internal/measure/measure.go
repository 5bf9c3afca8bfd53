// Package measure converts pixel-space plant geometry into physical units
// and renders the per-frame overlay.
package measure

import (
	"image"
	"time"

	"plant-monitor/internal/calib"
	"plant-monitor/internal/region"
)

// Measurement is one frame's worth of plant metrics. It is built fresh for
// every frame and never mutated afterwards.
//
// When Valid is false the calibration was not locked at build time: the
// pixel geometry (Leaves, Envelope, LeafCount) is still populated but the
// physical fields are zero and meaningless.
type Measurement struct {
	HeightMM         float64
	LeafCount        int
	TotalLeafAreaMM2 float64
	Leaves           []region.Leaf
	Envelope         image.Rectangle
	Valid            bool
	Timestamp        time.Time
}

// Build converts an extraction into physical units using the locked
// calibration ratio. Height scales linearly with the ratio; areas scale
// with its square.
func Build(ex region.Extraction, st calib.State, now time.Time) Measurement {
	m := Measurement{
		LeafCount: len(ex.Leaves),
		Leaves:    ex.Leaves,
		Envelope:  ex.Envelope,
		Timestamp: now,
	}

	if !st.Locked || st.RatioPxPerMM <= 0 {
		return m
	}
	m.Valid = true

	if ex.Found {
		m.HeightMM = float64(ex.Envelope.Dy()) / st.RatioPxPerMM
	}
	for _, lf := range ex.Leaves {
		m.TotalLeafAreaMM2 += LeafAreaMM2(lf, st)
	}
	return m
}

// LeafAreaMM2 converts one leaf's pixel area to square millimetres.
func LeafAreaMM2(lf region.Leaf, st calib.State) float64 {
	if !st.Locked || st.RatioPxPerMM <= 0 {
		return 0
	}
	return lf.Area / (st.RatioPxPerMM * st.RatioPxPerMM)
}
