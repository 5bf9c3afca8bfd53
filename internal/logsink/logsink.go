// Package logsink builds and persists discrete growth log entries.
//
// The core's obligation ends at producing the Entry and the snapshot
// image; whatever sits behind the Sink (a spreadsheet, a CSV file) is an
// external collaborator.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"plant-monitor/internal/measure"
)

// Entry is one persisted growth record. Immutable once built.
type Entry struct {
	Timestamp        time.Time `json:"timestamp"`
	HeightMM         float64   `json:"height_mm"`
	LeafCount        int       `json:"leaf_count"`
	TotalLeafAreaMM2 float64   `json:"total_leaf_area_mm2"`
	Snapshot         string    `json:"snapshot"`
}

// NewEntry builds an Entry from a raw measurement and its snapshot path.
func NewEntry(m measure.Measurement, snapshot string) Entry {
	return Entry{
		Timestamp:        m.Timestamp,
		HeightMM:         m.HeightMM,
		LeafCount:        m.LeafCount,
		TotalLeafAreaMM2: m.TotalLeafAreaMM2,
		Snapshot:         snapshot,
	}
}

// Sink receives completed entries.
type Sink interface {
	Append(Entry) error
}

// SnapshotName returns the snapshot filename convention for a log instant.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("plant_%s_best.jpg", t.Format("2006-01-02_15-04-05"))
}

// WriteSnapshot saves the frame under the captures directory, creating the
// directory on demand, and returns the written path.
func WriteSnapshot(dir string, t time.Time, frame gocv.Mat) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create captures dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(t))
	if ok := gocv.IMWrite(path, frame); !ok {
		return "", fmt.Errorf("write snapshot %s", path)
	}
	return path, nil
}
