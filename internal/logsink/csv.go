package logsink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// csvHeader mirrors the original spreadsheet column layout.
var csvHeader = []string{
	"Timestamp",
	"Stem Height (mm)",
	"Leaf Count",
	"Total Leaf Area (mm²)",
	"Image Filename",
}

// CSVSink appends entries to a CSV file, writing the header row when it
// creates the file. Safe for sequential use from the log path; the monitor
// guarantees at most one log in flight.
type CSVSink struct {
	path string
}

// NewCSVSink returns a sink writing to the given path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Append writes one entry, preceded by a header row when the file is new or
// still empty. Values round to two decimals like the original log format.
func (s *CSVSink) Append(e Entry) error {
	info, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := []string{
		e.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(e.HeightMM, 'f', 2, 64),
		strconv.Itoa(e.LeafCount),
		strconv.FormatFloat(e.TotalLeafAreaMM2, 'f', 2, 64),
		e.Snapshot,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	w.Flush()
	return w.Error()
}
