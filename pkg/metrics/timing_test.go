package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")

	m.Record(10 * time.Millisecond)
	m.Record(30 * time.Millisecond)
	m.Record(20 * time.Millisecond)

	if got := m.Count(); got != 3 {
		t.Errorf("expected count 3, got %d", got)
	}
	if got := m.TotalNs(); got != int64(60*time.Millisecond) {
		t.Errorf("expected total 60ms, got %dns", got)
	}
	if got := m.MaxNs(); got != int64(30*time.Millisecond) {
		t.Errorf("expected max 30ms, got %dns", got)
	}
	if got := m.MinNs(); got != int64(10*time.Millisecond) {
		t.Errorf("expected min 10ms, got %dns", got)
	}
	if got := m.AvgNs(); got != int64(20*time.Millisecond) {
		t.Errorf("expected avg 20ms, got %dns", got)
	}
}

func TestTimingMetricReset(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(5 * time.Millisecond)
	m.Reset()

	if m.Count() != 0 || m.TotalNs() != 0 || m.MinNs() != 0 {
		t.Error("expected zeroed stats after reset")
	}
}

func TestTimingMetricStats(t *testing.T) {
	m := newTimingMetric("rebuild")
	m.Record(10 * time.Millisecond)
	m.Record(20 * time.Millisecond)

	s := m.Stats()
	if s.Name != "rebuild" {
		t.Errorf("expected name rebuild, got %q", s.Name)
	}
	if s.Count != 2 {
		t.Errorf("expected count 2, got %d", s.Count)
	}
	if s.AvgMs != 15.0 {
		t.Errorf("expected avg 15ms, got %v", s.AvgMs)
	}
	if s.TotalMs != 30.0 {
		t.Errorf("expected total 30ms, got %v", s.TotalMs)
	}
}

func TestTimerRecordsToMetric(t *testing.T) {
	m := newTimingMetric("test")
	done := Timer(m)
	time.Sleep(time.Millisecond)
	done()

	if got := m.Count(); got != 1 {
		t.Fatalf("expected 1 recording, got %d", got)
	}
	if m.TotalNs() <= 0 {
		t.Error("expected positive elapsed time")
	}
}

func TestTimerNilMetric(t *testing.T) {
	done := Timer(nil)
	done() // must not panic
}

func TestDisabledCollection(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("test")
	m.Record(time.Millisecond)
	if m.Count() != 0 {
		t.Error("disabled collection should not record")
	}
	Timer(m)()
	if m.Count() != 0 {
		t.Error("disabled timer should not record")
	}
}

func TestAllTimingStatsSkipsEmpty(t *testing.T) {
	ResetAll()
	ModelRebuild.Record(2 * time.Millisecond)
	defer ResetAll()

	stats := AllTimingStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 populated metric, got %d", len(stats))
	}
	if stats[0].Name != "model_rebuild" {
		t.Errorf("expected model_rebuild, got %q", stats[0].Name)
	}
}
