package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/lamp"
)

func testLamp(t *testing.T, seed int64, blobs int) *lamp.Lamp {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	l := lamp.New(cfg, seed)
	l.Initialize(blobs)
	return l
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	l := testLamp(t, 42, 5)
	for i := 0; i < 120; i++ {
		l.Update(1.0 / 60)
	}

	snapshot := CaptureSnapshot(l, 42, 120)
	snapshot.Bookmark = &Bookmark{
		Type:        BookmarkSingleMass,
		Tick:        120,
		Description: "Test bookmark",
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("RNGSeed mismatch: got %d, want %d", loaded.RNGSeed, snapshot.RNGSeed)
	}
	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if len(loaded.Blobs) != len(snapshot.Blobs) {
		t.Errorf("Blob count mismatch: got %d, want %d", len(loaded.Blobs), len(snapshot.Blobs))
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotApplyRestoresLamp(t *testing.T) {
	src := testLamp(t, 7, 6)
	for i := 0; i < 300; i++ {
		src.Update(1.0 / 60)
	}
	src.SetHeaterTemperature(150)

	dst := testLamp(t, 99, 2)
	if err := CaptureSnapshot(src, 7, 300).Apply(dst); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if dst.BlobCount() != src.BlobCount() {
		t.Fatalf("blob count = %d, want %d", dst.BlobCount(), src.BlobCount())
	}
	want, got := src.Blobs(), dst.Blobs()
	for i := range want {
		if got[i].Position != want[i].Position || got[i].Radius != want[i].Radius || got[i].HeatPhase != want[i].HeatPhase {
			t.Errorf("blob %d differs after restore: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if dst.SimulationTime() != src.SimulationTime() {
		t.Errorf("sim time = %f, want %f", dst.SimulationTime(), src.SimulationTime())
	}
	if dst.HeaterTemperature() != 150 {
		t.Errorf("heater temp = %f, want 150", dst.HeaterTemperature())
	}
}

func TestSnapshotApplyRejectsVersion(t *testing.T) {
	l := testLamp(t, 1, 3)
	s := &Snapshot{Version: SnapshotVersion + 1}

	if err := s.Apply(l); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
	if l.BlobCount() != 3 {
		t.Errorf("rejected snapshot modified the lamp: %d blobs", l.BlobCount())
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkSplitBurst,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_split_burst.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshotNoBookmark := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}
