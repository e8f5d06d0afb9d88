package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_OverCapacity(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 600, BlobCount: 12, RenderedBlobs: 12, TotalVolume: 1})

	over := WindowStats{WindowEndTick: 1200, BlobCount: 18, RenderedBlobs: 16, TotalVolume: 1}
	if !hasBookmark(bd.Check(over), BookmarkOverCapacity) {
		t.Error("expected over_capacity bookmark")
	}

	// Staying over capacity does not re-trigger
	over.WindowEndTick = 1800
	if hasBookmark(bd.Check(over), BookmarkOverCapacity) {
		t.Error("over_capacity should only trigger on the transition")
	}
}

func TestBookmarkDetector_SingleMass(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 600, BlobCount: 3, TotalVolume: 1})
	bookmarks := bd.Check(WindowStats{WindowEndTick: 1200, BlobCount: 1, RadiusMean: 1.1, TotalVolume: 1})

	if !hasBookmark(bookmarks, BookmarkSingleMass) {
		t.Error("expected single_mass bookmark")
	}
}

func TestBookmarkDetector_VolumeDrift(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		want   bool
	}{
		{"conserved", 2.0, false},
		{"within tolerance", 2.01, false},
		{"grew", 2.5, true},
		{"shrank", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(10)
			bd.Check(WindowStats{WindowEndTick: 600, BlobCount: 5, TotalVolume: 2.0})

			got := hasBookmark(bd.Check(WindowStats{WindowEndTick: 1200, BlobCount: 5, TotalVolume: tt.volume}), BookmarkVolumeDrift)
			if got != tt.want {
				t.Errorf("volume %v: drift bookmark = %v, want %v", tt.volume, got, tt.want)
			}
		})
	}
}

func TestBookmarkDetector_SplitBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), BlobCount: 5, Splits: 1, TotalVolume: 1})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 3000, BlobCount: 9, Splits: 4, TotalVolume: 1})
	if !hasBookmark(bookmarks, BookmarkSplitBurst) {
		t.Error("expected split_burst bookmark")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := -1
	for i := 0; i < 12; i++ {
		stats := WindowStats{
			WindowEndTick: int32(i * 600),
			BlobCount:     5,
			TotalVolume:   1,
		}
		if hasBookmark(bd.Check(stats), BookmarkStablePopulation) {
			if triggered >= 0 {
				t.Fatalf("stable_population triggered twice (windows %d and %d)", triggered, i)
			}
			triggered = i
		}
	}

	// Four windows of history, then five consecutive stable checks
	if triggered != 8 {
		t.Errorf("expected stable_population at window 8, got %d", triggered)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)

	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i), TotalVolume: 1})
	}

	history := bd.getHistory()
	if len(history) != 5 {
		t.Fatalf("expected 5 windows of history, got %d", len(history))
	}
	for i, h := range history {
		if h.WindowEndTick != int32(i+2) {
			t.Errorf("history[%d] = tick %d, want %d", i, h.WindowEndTick, i+2)
		}
	}
}
