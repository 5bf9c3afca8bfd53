package monitor

import (
	"context"
	"errors"
	"time"
)

// Auto-log intervals mirroring the original schedule menu.
const (
	EverySecond = time.Second
	EveryMinute = time.Minute
	EveryHour   = time.Hour
	EveryDay    = 24 * time.Hour
)

// ErrScheduleRunning means a schedule is already active.
var ErrScheduleRunning = errors.New("monitor: schedule already running")

// ParseInterval maps a schedule name to its interval. Zero with nil error
// means "off".
func ParseInterval(name string) (time.Duration, error) {
	switch name {
	case "", "off":
		return 0, nil
	case "second":
		return EverySecond, nil
	case "minute":
		return EveryMinute, nil
	case "hour":
		return EveryHour, nil
	case "day":
		return EveryDay, nil
	}
	return 0, errors.New("monitor: unknown interval " + name)
}

// StartSchedule launches the auto-log loop: one log immediately, then one
// per interval. It refuses to start while uncalibrated so the scheduler
// cannot emit meaningless entries.
func (m *Monitor) StartSchedule(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("monitor: schedule interval must be positive")
	}
	if !m.State().Locked {
		return ErrNotCalibrated
	}

	m.mu.Lock()
	if m.schedDone != nil {
		m.mu.Unlock()
		return ErrScheduleRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.schedCancel = cancel
	m.schedDone = make(chan struct{})
	done := m.schedDone
	m.mu.Unlock()

	m.log.Info().Dur("interval", interval).Msg("schedule started")
	go m.scheduleLoop(ctx, interval, done)
	return nil
}

// StopSchedule cancels the schedule and waits for the loop to exit. An
// in-flight sampling window is abandoned without an entry.
func (m *Monitor) StopSchedule() {
	m.mu.Lock()
	cancel, done := m.schedCancel, m.schedDone
	m.schedCancel, m.schedDone = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.log.Info().Msg("schedule stopped")
}

func (m *Monitor) scheduleLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.runScheduledLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runScheduledLog(ctx)
		}
	}
}

func (m *Monitor) runScheduledLog(ctx context.Context) {
	_, err := m.LogNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		// Stop raced with the window; nothing was emitted.
	case errors.Is(err, ErrLogInProgress):
		// A manual log is still sampling; this trigger is dropped so
		// windows never overlap.
		m.log.Debug().Msg("scheduled log dropped, window in flight")
	default:
		m.log.Warn().Err(err).Msg("scheduled log failed")
	}
}
