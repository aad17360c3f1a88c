package metrics

import (
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

func TestObserve(t *testing.T) {
	m := New(nil)
	defer m.Stop()

	m.Observe("pdf", 100, 10*time.Millisecond, true)
	m.Observe("pdf", 50, 30*time.Millisecond, true)
	m.Observe("csv", 0, 20*time.Millisecond, false)

	v := m.View()
	if v.Succeeded != 2 {
		t.Errorf("expected 2 succeeded, got %d", v.Succeeded)
	}
	if v.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", v.Failed)
	}
	if v.Bytes != 150 {
		t.Errorf("expected 150 bytes, got %d", v.Bytes)
	}
	if v.MeanDuration != 20*time.Millisecond {
		t.Errorf("expected mean 20ms, got %v", v.MeanDuration)
	}
	if v.MaxDuration != 30*time.Millisecond {
		t.Errorf("expected max 30ms, got %v", v.MaxDuration)
	}

	counts := m.FormatCounts()
	if counts["pdf"] != 2 {
		t.Errorf("expected 2 pdf, got %d", counts["pdf"])
	}
	if _, ok := counts["csv"]; ok {
		t.Error("failed fetches should not count towards a format")
	}
}

func TestNewSharesRegistry(t *testing.T) {
	registry := gometrics.NewRegistry()
	m := New(registry)
	defer m.Stop()

	m.Observe("pdf", 1, time.Millisecond, true)

	if got := registry.Get(SucceededName); got == nil {
		t.Fatal("expected succeeded meter in registry")
	}
	again := New(registry)
	if again.Succeeded.Count() != 1 {
		t.Errorf("expected registered meter to be reused, got count %d", again.Succeeded.Count())
	}
}
