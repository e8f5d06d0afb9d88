package game

import (
	"log/slog"

	"github.com/pthm-cable/lavalamp/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.lamp)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager == nil && g.snapshotDir == "" {
			continue
		}

		snapshot := telemetry.CaptureSnapshot(g.lamp, g.rngSeed, g.tick)
		snapshot.Bookmark = &bm

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			if err := g.outputManager.WriteBlobs(snapshot, g.cfg.Render.MaxBlobs); err != nil {
				slog.Error("failed to write bookmark blobs", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(snapshot)
		}
	}
}

// saveSnapshot writes a captured snapshot to the snapshot directory.
func (g *Game) saveSnapshot(snapshot *telemetry.Snapshot) {
	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}
