package bestframe

import (
	"context"
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"plant-monitor/internal/measure"
)

// sequenceSampler replays a fixed series of total-area values, tagging each
// sample's timestamp with its index so tests can tell ties apart. Once the
// series is exhausted it reports no sample available.
func sequenceSampler(areas []float64) SampleFunc {
	i := 0
	return func() (Sample, bool) {
		if i >= len(areas) {
			return Sample{}, false
		}
		s := Sample{
			Measurement: measure.Measurement{
				TotalLeafAreaMM2: areas[i],
				Valid:            true,
				Timestamp:        time.Unix(int64(i), 0),
			},
			Frame: gocv.NewMat(),
		}
		i++
		return s, true
	}
}

func TestRun_MaxAreaFirstSeenTieBreak(t *testing.T) {
	sample := sequenceSampler([]float64{5, 9, 3, 9, 7})

	best, err := Run(context.Background(), sample, 100*time.Millisecond, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer best.Frame.Close()

	if best.Measurement.TotalLeafAreaMM2 != 9 {
		t.Errorf("best area = %v, want 9", best.Measurement.TotalLeafAreaMM2)
	}
	// Index 1 holds the first 9; index 3 the second.
	if got := best.Measurement.Timestamp.Unix(); got != 1 {
		t.Errorf("selected sample index %d, want 1 (first-seen tie-break)", got)
	}
}

func TestRun_NoSamples(t *testing.T) {
	sample := func() (Sample, bool) { return Sample{}, false }

	_, err := Run(context.Background(), sample, 30*time.Millisecond, 5*time.Millisecond)
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("err = %v, want ErrNoSamples", err)
	}
}

func TestRun_CancelAbandonsWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sampled := make(chan struct{}, 1)
	sample := func() (Sample, bool) {
		select {
		case sampled <- struct{}{}:
		default:
		}
		return Sample{Measurement: measure.Measurement{TotalLeafAreaMM2: 1, Valid: true}, Frame: gocv.NewMat()}, true
	}

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, sample, time.Minute, time.Millisecond)
		done <- err
	}()

	<-sampled
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
