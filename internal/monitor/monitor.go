// Package monitor orchestrates the per-frame measurement pipeline and the
// discrete log path around one shared calibration state.
//
// The continuous path (ProcessFrame) is CPU-bound and never blocks on I/O.
// The log path (LogNow) samples the latest raw measurements over a short
// window on its caller's goroutine; a single-flight guard keeps sampling
// windows from overlapping.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"plant-monitor/internal/bestframe"
	"plant-monitor/internal/calib"
	"plant-monitor/internal/config"
	"plant-monitor/internal/logsink"
	"plant-monitor/internal/measure"
	"plant-monitor/internal/region"
	"plant-monitor/internal/segment"
	"plant-monitor/internal/stabilize"
)

var (
	// ErrEmptyFrame means the frame source delivered a missing or corrupt
	// frame; the cycle is skipped.
	ErrEmptyFrame = errors.New("monitor: empty frame")

	// ErrNotCalibrated means a log was requested before calibration locked.
	ErrNotCalibrated = errors.New("monitor: not calibrated")

	// ErrLogInProgress means a sampling window is already in flight; the
	// new trigger is dropped.
	ErrLogInProgress = errors.New("monitor: log already in progress")
)

// Monitor owns the calibration state, the display stabilizer, and the
// latest raw sample. One mutex guards all three; the continuous path
// writes them, the log path only reads.
type Monitor struct {
	cfg  *config.Config
	sink logsink.Sink
	log  zerolog.Logger

	mu        sync.Mutex
	state     calib.State
	gen       uint64 // bumped by Recalibrate; stale frames must not commit
	stab      *stabilize.Stabilizer
	lastRaw   measure.Measurement
	lastFrame gocv.Mat
	haveFrame bool

	logging atomic.Bool

	schedCancel context.CancelFunc
	schedDone   chan struct{}
}

// New returns a Monitor. sink may be nil when no persistence is attached.
func New(cfg *config.Config, sink logsink.Sink, log zerolog.Logger) *Monitor {
	return &Monitor{
		cfg:  cfg,
		sink: sink,
		log:  log,
		stab: stabilize.New(cfg.HistoryDepth),
	}
}

// Result is one continuous cycle's output. The caller owns Annotated and
// must close it.
type Result struct {
	Raw        measure.Measurement
	View       stabilize.View
	Annotated  gocv.Mat
	Calibrated bool
}

// ProcessFrame runs the pipeline on one BGR frame: calibration while
// unlocked, segmentation, region extraction, measurement, smoothing, and
// annotation. While unlocked it keeps retrying calibration every frame and
// the returned measurement is marked invalid.
func (m *Monitor) ProcessFrame(frame gocv.Mat) (Result, error) {
	if frame.Empty() {
		return Result{}, ErrEmptyFrame
	}

	m.mu.Lock()
	st := m.state
	gen := m.gen
	m.mu.Unlock()

	var ref *calib.Reference
	justCalibrated := false
	if !st.Locked {
		newState, found, err := calib.Calibrate(frame, m.cfg.CalibParams())
		if err == nil {
			st = newState
			ref = &found
			justCalibrated = true
			m.log.Info().Float64("px_per_mm", st.RatioPxPerMM).Msg("calibration locked")
		} else {
			m.log.Debug().Err(err).Msg("calibration attempt failed")
		}
	} else {
		// Ratio stays locked; the reference is re-located for the
		// confirmation box only.
		if found, err := calib.Locate(frame, m.cfg.CalibParams()); err == nil {
			ref = &found
		}
	}

	mask := segment.Mask(frame, m.cfg.SegmentParams())
	defer mask.Close()

	ex := region.Extract(mask, m.cfg.MinLeafAreaPixels)
	raw := measure.Build(ex, st, time.Now())
	annotated := measure.Annotate(frame, raw, ref)

	view, calibrated := m.commitFrame(raw, st, gen, justCalibrated, frame)

	return Result{Raw: raw, View: view, Annotated: annotated, Calibrated: calibrated}, nil
}

// commitFrame folds one frame's results into the shared state. If a
// recalibration landed while the frame was in flight, its measurement was
// built against the discarded ratio: it is marked invalid so neither the
// cleared histories nor the log path can pick it up, and the pre-recalibration
// calibration state is never written back.
func (m *Monitor) commitFrame(raw measure.Measurement, st calib.State, gen uint64, justCalibrated bool, frame gocv.Mat) (stabilize.View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		raw.Valid = false
	} else if justCalibrated {
		m.state = st
	}
	m.stab.Observe(raw)
	view := m.stab.View()
	m.lastRaw = raw
	if m.haveFrame {
		m.lastFrame.Close()
	}
	m.lastFrame = frame.Clone()
	m.haveFrame = true
	return view, m.state.Locked
}

// Recalibrate unlocks the calibration and clears the display histories.
// The next frames re-run reference detection until it locks again.
func (m *Monitor) Recalibrate() {
	m.mu.Lock()
	m.state = calib.State{}
	m.gen++
	m.stab.Reset()
	m.mu.Unlock()
	m.log.Info().Msg("recalibration requested")
}

// State returns the current calibration state.
func (m *Monitor) State() calib.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// sampleLatest hands the best-frame selector a clone of the newest raw
// measurement and frame. It never touches the stabilizer.
func (m *Monitor) sampleLatest() (bestframe.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveFrame || !m.lastRaw.Valid {
		return bestframe.Sample{}, false
	}
	return bestframe.Sample{Measurement: m.lastRaw, Frame: m.lastFrame.Clone()}, true
}

// LogNow runs one best-frame sampling window and persists the winner:
// snapshot image first, then the entry through the sink. It fails fast
// while uncalibrated and drops triggers that arrive during a window.
// Cancelling the context abandons the window without a partial entry.
func (m *Monitor) LogNow(ctx context.Context) (logsink.Entry, error) {
	if !m.State().Locked {
		return logsink.Entry{}, ErrNotCalibrated
	}
	if !m.logging.CompareAndSwap(false, true) {
		return logsink.Entry{}, ErrLogInProgress
	}
	defer m.logging.Store(false)

	m.log.Info().Dur("window", m.cfg.SampleWindow()).Msg("sampling for best frame")

	best, err := bestframe.Run(ctx, m.sampleLatest, m.cfg.SampleWindow(), m.cfg.SamplePeriod())
	if err != nil {
		return logsink.Entry{}, err
	}
	defer best.Frame.Close()

	path, err := logsink.WriteSnapshot(m.cfg.CaptureDir, best.Measurement.Timestamp, best.Frame)
	if err != nil {
		return logsink.Entry{}, fmt.Errorf("snapshot: %w", err)
	}

	entry := logsink.NewEntry(best.Measurement, path)
	if m.sink != nil {
		if err := m.sink.Append(entry); err != nil {
			// Persistence failure must not disturb the continuous path;
			// the entry is still returned alongside the error.
			return entry, fmt.Errorf("persist: %w", err)
		}
	}

	m.log.Info().
		Float64("height_mm", entry.HeightMM).
		Int("leaves", entry.LeafCount).
		Float64("area_mm2", entry.TotalLeafAreaMM2).
		Str("snapshot", entry.Snapshot).
		Msg("logged best frame")
	return entry, nil
}

// Close stops the scheduler and releases the retained frame.
func (m *Monitor) Close() {
	m.StopSchedule()
	m.mu.Lock()
	if m.haveFrame {
		m.lastFrame.Close()
		m.haveFrame = false
	}
	m.mu.Unlock()
}
