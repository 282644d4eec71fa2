package api

import (
	"testing"
	"time"
)

func TestReportStatsSnapshotPercentiles(t *testing.T) {
	stats := NewReportStats(time.Hour)
	for i, ms := range []int{100, 200, 300, 400, 500} {
		race := "Elfes"
		if i%2 == 1 {
			race = "Nains"
		}
		stats.Record(race, time.Duration(ms)*time.Millisecond, i)
	}

	snap := stats.Snapshot()
	if snap.Runs != 5 {
		t.Fatalf("expected runs=5, got %d", snap.Runs)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.AvgFindings != 2 {
		t.Fatalf("expected avg findings=2, got %f", snap.AvgFindings)
	}
	if len(snap.Races) != 2 || snap.Races[0] != "Elfes" || snap.Races[1] != "Nains" {
		t.Fatalf("unexpected races %v", snap.Races)
	}
}

func TestReportStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewReportStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record("Elfes", 100*time.Millisecond, 1)
	now = now.Add(2 * time.Minute)

	snap := stats.Snapshot()
	if snap.Runs != 0 {
		t.Fatalf("expected runs=0 after prune, got %d", snap.Runs)
	}
	if snap.Races == nil {
		t.Fatal("expected empty, non-nil races")
	}

	stats.Record("Nains", 200*time.Millisecond, 0)
	snap = stats.Snapshot()
	if snap.Runs != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestReportStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewReportStats(time.Hour)
	stats.Record("Elfes", -5*time.Millisecond, 0)

	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration 0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestPercentileEdges(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty input, got %f", got)
	}
	values := []int64{10, 20}
	if got := percentile(values, 0); got != 10 {
		t.Fatalf("expected p0=10, got %f", got)
	}
	if got := percentile(values, 100); got != 20 {
		t.Fatalf("expected p100=20, got %f", got)
	}
	if got := percentile(values, 50); got != 15 {
		t.Fatalf("expected p50=15, got %f", got)
	}
}
