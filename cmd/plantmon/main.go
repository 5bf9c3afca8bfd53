// Command plantmon runs the live plant growth monitor: continuous
// measurement from a webcam, optional preview window, and scheduled or
// signal-free manual logging to a CSV file.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"plant-monitor/internal/camera"
	"plant-monitor/internal/config"
	"plant-monitor/internal/logsink"
	"plant-monitor/internal/monitor"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file (defaults apply when empty)")
	cameraID := flag.Int("camera", -1, "Capture device ID (overrides config)")
	csvPath := flag.String("csv", "", "CSV log path (overrides config)")
	captureDir := flag.String("captures", "", "Snapshot directory (overrides config)")
	interval := flag.String("interval", "off", "Auto-log interval: off, second, minute, hour, day")
	show := flag.Bool("show", false, "Show a preview window (ESC quits)")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = loaded
	}
	if *cameraID >= 0 {
		cfg.CameraID = *cameraID
	}
	if *csvPath != "" {
		cfg.CSVPath = *csvPath
	}
	if *captureDir != "" {
		cfg.CaptureDir = *captureDir
	}

	schedInterval, err := monitor.ParseInterval(*interval)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad interval")
	}

	cam, err := camera.Open(cfg.CameraID)
	if err != nil {
		logger.Fatal().Err(err).Msg("open camera")
	}
	defer cam.Close()

	mon := monitor.New(cfg, logsink.NewCSVSink(cfg.CSVPath), logger)
	defer mon.Close()

	var window *gocv.Window
	if *show {
		window = gocv.NewWindow("Plant Monitor")
		defer window.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Int("camera", cfg.CameraID).Msg("monitoring started")

	frame := gocv.NewMat()
	defer frame.Close()

	scheduled := false
	lastStatus := time.Now()

	for {
		select {
		case <-sigCh:
			logger.Info().Msg("shutting down")
			return
		default:
		}

		if ok := cam.Read(&frame); !ok {
			// Missing frame: skip the cycle, keep the session alive.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		res, err := mon.ProcessFrame(frame)
		if err != nil {
			logger.Debug().Err(err).Msg("frame skipped")
			continue
		}

		// The scheduler can only start once calibration has locked.
		if schedInterval > 0 && !scheduled && res.Calibrated {
			if err := mon.StartSchedule(schedInterval); err != nil {
				logger.Warn().Err(err).Msg("start schedule")
			} else {
				scheduled = true
			}
		}

		if time.Since(lastStatus) >= 5*time.Second {
			lastStatus = time.Now()
			if res.Calibrated {
				logger.Info().
					Float64("height_mm", res.View.HeightMM).
					Int("leaves", res.View.LeafCount).
					Float64("area_mm2", res.View.TotalLeafAreaMM2).
					Msg("smoothed metrics")
			} else {
				logger.Info().Msg("waiting for blue reference object")
			}
		}

		if window != nil {
			window.IMShow(res.Annotated)
			if window.WaitKey(1) == 27 {
				res.Annotated.Close()
				fmt.Fprintln(os.Stderr, "ESC pressed, exiting")
				return
			}
		}
		res.Annotated.Close()
	}
}
