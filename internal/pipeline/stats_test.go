package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/question"
)

func TestExtractStatsSnapshotPercentiles(t *testing.T) {
	stats := NewExtractStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(ms, question.Record{})
	}

	snap := stats.Snapshot()
	if snap.Questions != 5 {
		t.Fatalf("expected questions=5, got %d", snap.Questions)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
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
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestExtractStatsCountsKindsAndFailures(t *testing.T) {
	stats := NewExtractStats(time.Hour)
	stats.Record(10, question.Record{Figures: []figure.Record{
		{Kind: figure.KindEquation}, {Kind: figure.KindEquation}, {Kind: figure.KindTableMarkup},
	}})
	stats.Record(20, question.Failed("q2", errors.New("boom")))

	snap := stats.Snapshot()
	if snap.Failed != 1 {
		t.Fatalf("expected failed=1, got %d", snap.Failed)
	}
	if snap.Figures["equation"] != 2 || snap.Figures["table-markup"] != 1 {
		t.Fatalf("unexpected figure counts %v", snap.Figures)
	}
}

func TestExtractStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewExtractStats(10 * time.Millisecond)
	stats.Record(100, question.Record{})
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Questions != 0 {
		t.Fatalf("expected questions=0 after prune, got %d", snap.Questions)
	}
	if snap.Figures == nil {
		t.Fatal("expected non-nil figure counts")
	}

	stats.Record(200, question.Record{})
	snap = stats.Snapshot()
	if snap.Questions != 1 {
		t.Fatalf("expected questions=1 for fresh sample, got %d", snap.Questions)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestExtractStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewExtractStats(time.Hour)
	stats.Record(-10, question.Record{})
	snap := stats.Snapshot()
	if snap.Questions != 1 {
		t.Fatalf("expected questions=1, got %d", snap.Questions)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
