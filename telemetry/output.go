package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/lavalamp/config"
)

// csvLog is an append-only CSV file whose header is written with the first rows.
type csvLog struct {
	name   string
	file   *os.File
	header bool
}

func openCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, file: f}, nil
}

// append marshals records, a slice of csv-tagged structs.
func (c *csvLog) append(records any) error {
	if c == nil {
		return errors.New("writing to unopened csv log")
	}
	if c.file == nil {
		return fmt.Errorf("writing %s: log closed", c.name)
	}
	var err error
	if !c.header {
		err = gocsv.Marshal(records, c.file)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	c.header = true
	return nil
}

func (c *csvLog) close() error {
	if c == nil || c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// BlobRow is one blob of the lamp at the moment a bookmark fired.
type BlobRow struct {
	Tick        int32   `csv:"tick"`
	Bookmark    string  `csv:"bookmark"`
	Index       int     `csv:"index"`
	X           float32 `csv:"x"`
	Y           float32 `csv:"y"`
	Z           float32 `csv:"z"`
	Speed       float32 `csv:"speed"`
	Radius      float32 `csv:"radius"`
	Temperature float32 `csv:"temperature"`
	Blobbiness  float32 `csv:"blobbiness"`
	HeatPhase   float32 `csv:"heat_phase"`
	Rendered    bool    `csv:"rendered"`
}

// BlobRows flattens a snapshot into per-blob rows. Blobs at index
// renderLimit and beyond are marked as not rendered.
func BlobRows(s *Snapshot, renderLimit int) []BlobRow {
	var kind string
	if s.Bookmark != nil {
		kind = string(s.Bookmark.Type)
	}
	rows := make([]BlobRow, len(s.Blobs))
	for i, b := range s.Blobs {
		rows[i] = BlobRow{
			Tick:        s.Tick,
			Bookmark:    kind,
			Index:       i,
			X:           b.Position[0],
			Y:           b.Position[1],
			Z:           b.Position[2],
			Speed:       mgl32.Vec3(b.Velocity).Len(),
			Radius:      b.Radius,
			Temperature: b.Temperature,
			Blobbiness:  b.Blobbiness,
			HeatPhase:   b.HeatPhase,
			Rendered:    i < renderLimit,
		}
	}
	return rows
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir string

	telemetry *csvLog
	perf      *csvLog
	bookmarks *csvLog
	blobs     *csvLog
}

// NewOutputManager creates the output directory and its CSV logs.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	logs := []struct {
		dst  **csvLog
		name string
	}{
		{&om.telemetry, "telemetry.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
		{&om.blobs, "blobs.csv"},
	}
	for _, l := range logs {
		c, err := openCSVLog(dir, l.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*l.dst = c
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.append([]WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.append([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append([]Bookmark{b})
}

// WriteBlobs appends every blob of the snapshot to blobs.csv. An empty
// lamp writes nothing.
func (om *OutputManager) WriteBlobs(s *Snapshot, renderLimit int) error {
	if om == nil || s == nil || len(s.Blobs) == 0 {
		return nil
	}
	return om.blobs.append(BlobRows(s, renderLimit))
}

// SnapshotDir returns the directory bookmark snapshots are saved under.
func (om *OutputManager) SnapshotDir() string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, "snapshots")
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files. It is safe to call more than once.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.telemetry.close(),
		om.perf.close(),
		om.bookmarks.close(),
		om.blobs.close(),
	)
}
