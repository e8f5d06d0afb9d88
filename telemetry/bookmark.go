package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkOverCapacity     BookmarkType = "over_capacity"
	BookmarkSingleMass       BookmarkType = "single_mass"
	BookmarkVolumeDrift      BookmarkType = "volume_drift"
	BookmarkSplitBurst       BookmarkType = "split_burst"
	BookmarkStablePopulation BookmarkType = "stable_population"
)

// volumeDriftTolerance is the relative volume change between windows that
// merges and splits alone cannot explain.
const volumeDriftTolerance = 0.01

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the lamp.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	last               *WindowStats
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.last != nil {
		// More blobs than the renderer can draw
		if b := bd.checkOverCapacity(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Everything coalesced into one blob
		if b := bd.checkSingleMass(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		if b := bd.checkVolumeDrift(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Splits > 2x rolling average
		if b := bd.checkSplitBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Blob count with low variance over 5+ windows
	if b := bd.checkStablePopulation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	last := stats
	bd.last = &last

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkOverCapacity(stats WindowStats) *Bookmark {
	wasOver := bd.last.BlobCount > bd.last.RenderedBlobs
	if stats.BlobCount > stats.RenderedBlobs && !wasOver {
		return &Bookmark{
			Type:        BookmarkOverCapacity,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d blobs exceed render capacity %d", stats.BlobCount, stats.RenderedBlobs),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSingleMass(stats WindowStats) *Bookmark {
	if stats.BlobCount == 1 && bd.last.BlobCount > 1 {
		return &Bookmark{
			Type:        BookmarkSingleMass,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("All wax merged into one blob of radius %.2f", stats.RadiusMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkVolumeDrift(stats WindowStats) *Bookmark {
	prev := bd.last.TotalVolume
	if prev <= 0 {
		return nil
	}

	drift := (stats.TotalVolume - prev) / prev
	if math.Abs(drift) > volumeDriftTolerance {
		return &Bookmark{
			Type:        BookmarkVolumeDrift,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Wax volume changed %.1f%% (%.3f to %.3f)", drift*100, prev, stats.TotalVolume),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSplitBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Splits
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Splits) > avg*2.0 && stats.Splits >= 3 {
		return &Bookmark{
			Type:        BookmarkSplitBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d splits is %.1fx average (%.2f)", stats.Splits, float64(stats.Splits)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.BlobCount < 2 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	counts := make([]float64, 0, 4)
	for _, h := range history[len(history)-4:] {
		counts = append(counts, float64(h.BlobCount))
	}
	mean, variance := stat.PopMeanVariance(counts, nil)

	// Coefficient of variation < 20%
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d blobs over 5+ windows", stats.BlobCount),
		}
	}
	return nil
}
