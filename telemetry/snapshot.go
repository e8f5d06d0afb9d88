package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/lavalamp/lamp"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete lamp state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Tick    int32   `json:"tick"`
	SimTime float32 `json:"sim_time"`

	HeaterTemp float32 `json:"heater_temp"`
	Threshold  float32 `json:"threshold"`

	Blobs []BlobState `json:"blobs"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BlobState holds one blob's complete state.
type BlobState struct {
	Position    [3]float32 `json:"position"`
	Velocity    [3]float32 `json:"velocity"`
	Radius      float32    `json:"radius"`
	Temperature float32    `json:"temperature"`
	Blobbiness  float32    `json:"blobbiness"`
	Color       [3]float32 `json:"color"`

	AnchorPoint    [3]float32 `json:"anchor_point"`
	AnchorStrength float32    `json:"anchor_strength"`
	HeatPhase      float32    `json:"heat_phase"`
	CycleSpeed     float32    `json:"cycle_speed"`
}

// CaptureSnapshot records the lamp's current state.
func CaptureSnapshot(l *lamp.Lamp, seed int64, tick int32) *Snapshot {
	blobs := l.Blobs()
	states := make([]BlobState, len(blobs))
	for i, b := range blobs {
		states[i] = BlobState{
			Position:       b.Position,
			Velocity:       b.Velocity,
			Radius:         b.Radius,
			Temperature:    b.Temperature,
			Blobbiness:     b.Blobbiness,
			Color:          b.Color,
			AnchorPoint:    b.AnchorPoint,
			AnchorStrength: b.AnchorStrength,
			HeatPhase:      b.HeatPhase,
			CycleSpeed:     b.CycleSpeed,
		}
	}

	return &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    seed,
		Tick:       tick,
		SimTime:    l.SimulationTime(),
		HeaterTemp: l.HeaterTemperature(),
		Threshold:  l.Threshold(),
		Blobs:      states,
	}
}

// Apply restores the snapshot into l. The lamp's random stream is not part
// of the snapshot, so runs diverge from the original after the restore.
func (s *Snapshot) Apply(l *lamp.Lamp) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}

	blobs := make([]lamp.Blob, len(s.Blobs))
	for i, b := range s.Blobs {
		blobs[i] = lamp.Blob{
			Position:       mgl32.Vec3(b.Position),
			Velocity:       mgl32.Vec3(b.Velocity),
			Radius:         b.Radius,
			Temperature:    b.Temperature,
			Blobbiness:     b.Blobbiness,
			Color:          mgl32.Vec3(b.Color),
			AnchorPoint:    mgl32.Vec3(b.AnchorPoint),
			AnchorStrength: b.AnchorStrength,
			HeatPhase:      b.HeatPhase,
			CycleSpeed:     b.CycleSpeed,
		}
	}

	l.Restore(blobs, s.SimTime)
	l.SetHeaterTemperature(s.HeaterTemp)
	l.SetThreshold(s.Threshold)
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
