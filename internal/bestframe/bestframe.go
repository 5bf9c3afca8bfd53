// Package bestframe picks the representative sample for a discrete log
// event.
//
// A single frame can suffer transient occlusion or mask noise that
// undercounts leaf area, so a log trigger samples the pipeline for a short
// window and keeps the frame maximizing total leaf area — a cheap proxy for
// the least occluded view.
package bestframe

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"plant-monitor/internal/measure"
)

// Default sampling policy: a 2 s window polled every 100 ms.
const (
	DefaultWindow = 2 * time.Second
	DefaultPeriod = 100 * time.Millisecond
)

// ErrNoSamples means the window elapsed without a single usable sample.
var ErrNoSamples = errors.New("bestframe: no samples collected")

// Sample pairs a raw (unsmoothed) measurement with its source frame. The
// frame is owned by whoever holds the Sample and must be closed.
type Sample struct {
	Measurement measure.Measurement
	Frame       gocv.Mat
}

// SampleFunc supplies the current raw measurement and a frame clone the
// selector may keep. ok is false when no usable sample is available right
// now (no frame seen yet, or the pipeline is uncalibrated).
type SampleFunc func() (s Sample, ok bool)

// Run polls sample for the duration of the window and returns the sample
// with the maximum total leaf area. Ties keep the first-seen sample.
// Cancelling the context abandons the window: any collected frame is
// closed and no partial result escapes.
func Run(ctx context.Context, sample SampleFunc, window, period time.Duration) (Sample, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if period <= 0 {
		period = DefaultPeriod
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	deadline := time.NewTimer(window)
	defer deadline.Stop()

	var best Sample
	haveBest := false

	for {
		select {
		case <-ctx.Done():
			if haveBest {
				best.Frame.Close()
			}
			return Sample{}, ctx.Err()

		case <-deadline.C:
			if !haveBest {
				return Sample{}, ErrNoSamples
			}
			return best, nil

		case <-ticker.C:
			s, ok := sample()
			if !ok {
				continue
			}
			// Strictly greater keeps the first-seen sample on ties.
			if !haveBest || s.Measurement.TotalLeafAreaMM2 > best.Measurement.TotalLeafAreaMM2 {
				if haveBest {
					best.Frame.Close()
				}
				best = s
				haveBest = true
				continue
			}
			s.Frame.Close()
		}
	}
}
