package logsink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
	if got, want := SnapshotName(ts), "plant_2026-08-25_14-30-05_best.jpg"; got != want {
		t.Errorf("SnapshotName = %q, want %q", got, want)
	}
}

func TestCSVSink_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growth.csv")
	sink := NewCSVSink(path)

	entries := []Entry{
		{Timestamp: time.Unix(100, 0), HeightMM: 42.128, LeafCount: 3, TotalLeafAreaMM2: 512.5, Snapshot: "a.jpg"},
		{Timestamp: time.Unix(200, 0), HeightMM: 43, LeafCount: 4, TotalLeafAreaMM2: 530, Snapshot: "b.jpg"},
	}
	for _, e := range entries {
		if err := sink.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 entries", len(rows))
	}
	if rows[0][0] != "Timestamp" {
		t.Errorf("first row is not the header: %v", rows[0])
	}
	if rows[1][1] != "42.13" {
		t.Errorf("height not rounded to two decimals: %q", rows[1][1])
	}
	if rows[2][2] != "4" {
		t.Errorf("leaf count column = %q, want 4", rows[2][2])
	}
}

func TestCSVSink_HeaderWrittenToEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growth.csv")
	// An empty file can be left behind by a run that died before its first
	// entry; the next append must still start with the header.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("pre-create: %v", err)
	}

	sink := NewCSVSink(path)
	e := Entry{Timestamp: time.Unix(100, 0), HeightMM: 10, LeafCount: 2, TotalLeafAreaMM2: 80, Snapshot: "a.jpg"}
	if err := sink.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "Timestamp" {
		t.Errorf("empty file appended without header: %v", rows)
	}
}
