package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/lavalamp/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// All methods are safe on a nil manager
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.SnapshotDir() != "" {
		t.Error("expected empty dirs for nil manager")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 600), BlobCount: 5}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,blobs") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if strings.Contains(lines[0], "window_start") {
		t.Error("window start tick should not be exported")
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "raymarch_pct") {
		t.Error("perf.csv missing raymarch_pct column")
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load back: %v", err)
	}
}

func TestWriteBlobsOnBookmark(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	snap := &Snapshot{
		Tick: 1200,
		Blobs: []BlobState{
			{Position: [3]float32{1, 2, 3}, Velocity: [3]float32{3, 0, 4}, Radius: 0.5, HeatPhase: 0.25},
			{Position: [3]float32{0, 5, 0}, Radius: 0.7},
			{Position: [3]float32{0, 6, 0}, Radius: 0.6},
		},
		Bookmark: &Bookmark{Type: BookmarkSingleMass, Tick: 1200},
	}
	if err := om.WriteBlobs(snap, 2); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBlobs(&Snapshot{Tick: 1800}, 2); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBlobs(snap, 2); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "blobs.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header + 6 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,bookmark,index,x,y,z,speed") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1200,"+string(BookmarkSingleMass)+",0,1,2,3,5,") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",true") || !strings.HasSuffix(lines[3], ",false") {
		t.Errorf("rendered flag wrong: %q, %q", lines[2], lines[3])
	}
}

func TestBlobRowsWithoutBookmark(t *testing.T) {
	rows := BlobRows(&Snapshot{Tick: 7, Blobs: make([]BlobState, 2)}, 16)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, r := range rows {
		if r.Bookmark != "" || r.Index != i || r.Tick != 7 || !r.Rendered {
			t.Errorf("row %d = %+v", i, r)
		}
	}
}
