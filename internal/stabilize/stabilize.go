// Package stabilize smooths per-frame measurements for continuous display.
//
// Raw per-frame values jitter with mask noise; the display shows the
// arithmetic mean of a fixed-depth rolling history instead. The history is
// display-only state: logged entries always use raw measurements.
package stabilize

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"plant-monitor/internal/measure"
)

// DefaultDepth is the rolling history capacity, roughly one second of
// frames at webcam rates.
const DefaultDepth = 30

// History is a fixed-capacity FIFO of scalar samples. Not safe for
// concurrent use; the owner serializes access.
type History struct {
	values []float64
	depth  int
}

// NewHistory returns a history holding at most depth samples.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{values: make([]float64, 0, depth), depth: depth}
}

// Push appends a sample, evicting the oldest once past capacity.
func (h *History) Push(v float64) {
	if len(h.values) == h.depth {
		copy(h.values, h.values[1:])
		h.values[len(h.values)-1] = v
		return
	}
	h.values = append(h.values, v)
}

// Mean returns the arithmetic mean of the current contents, 0 when empty.
func (h *History) Mean() float64 {
	if len(h.values) == 0 {
		return 0
	}
	return stat.Mean(h.values, nil)
}

// Len returns the number of held samples.
func (h *History) Len() int { return len(h.values) }

// Clear drops all samples.
func (h *History) Clear() { h.values = h.values[:0] }

// Stabilizer maintains one rolling history per scalar metric.
type Stabilizer struct {
	height *History
	count  *History
	area   *History
}

// New returns a Stabilizer with the given history depth per metric.
func New(depth int) *Stabilizer {
	return &Stabilizer{
		height: NewHistory(depth),
		count:  NewHistory(depth),
		area:   NewHistory(depth),
	}
}

// Observe pushes a raw measurement into the histories. Invalid
// (uncalibrated) measurements are ignored so their zero physical fields
// cannot drag the displayed averages down.
func (s *Stabilizer) Observe(m measure.Measurement) {
	if !m.Valid {
		return
	}
	s.height.Push(m.HeightMM)
	s.count.Push(float64(m.LeafCount))
	s.area.Push(m.TotalLeafAreaMM2)
}

// View is the smoothed display state. LeafCount is the mean rounded to the
// nearest integer: rounding after averaging, rather than truncating, keeps
// a steady count when the raw count flickers between two values.
type View struct {
	HeightMM         float64
	LeafCount        int
	TotalLeafAreaMM2 float64
	Samples          int
}

// View returns the current smoothed values.
func (s *Stabilizer) View() View {
	return View{
		HeightMM:         s.height.Mean(),
		LeafCount:        int(math.Round(s.count.Mean())),
		TotalLeafAreaMM2: s.area.Mean(),
		Samples:          s.height.Len(),
	}
}

// Reset clears every history. Invoked on recalibration: values measured
// under the old ratio must not be averaged with values under the new one.
func (s *Stabilizer) Reset() {
	s.height.Clear()
	s.count.Clear()
	s.area.Clear()
}
