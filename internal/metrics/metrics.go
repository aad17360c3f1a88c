package metrics

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Metric names registered by New.
const (
	SucceededName = "fetch.succeeded"
	FailedName    = "fetch.failed"
	BytesName     = "fetch.bytes"
	DurationName  = "fetch.duration"
	formatPrefix  = "fetch.format."
)

// Metrics holds the meters updated by workers.
type Metrics struct {
	Registry  gometrics.Registry
	Succeeded gometrics.Meter
	Failed    gometrics.Meter
	Bytes     gometrics.Counter
	Duration  gometrics.Timer
}

// View is a point-in-time read of the metrics.
type View struct {
	Succeeded    int64
	Failed       int64
	Bytes        int64
	Rate1        float64 // successes per second, one-minute moving average
	MeanDuration time.Duration
	MaxDuration  time.Duration
}

// New registers the fetch metrics in registry. A nil registry gets a fresh
// one.
func New(registry gometrics.Registry) *Metrics {
	if registry == nil {
		registry = gometrics.NewRegistry()
	}
	return &Metrics{
		Registry:  registry,
		Succeeded: gometrics.GetOrRegisterMeter(SucceededName, registry),
		Failed:    gometrics.GetOrRegisterMeter(FailedName, registry),
		Bytes:     gometrics.GetOrRegisterCounter(BytesName, registry),
		Duration:  gometrics.GetOrRegisterTimer(DurationName, registry),
	}
}

// Observe records one fetch outcome.
func (m *Metrics) Observe(format string, bytes int64, d time.Duration, ok bool) {
	m.Duration.Update(d)
	if !ok {
		m.Failed.Mark(1)
		return
	}
	m.Succeeded.Mark(1)
	m.Bytes.Inc(bytes)
	gometrics.GetOrRegisterCounter(formatPrefix+format, m.Registry).Inc(1)
}

// FormatCounts returns the number of successful fetches per format.
func (m *Metrics) FormatCounts() map[string]int64 {
	counts := make(map[string]int64)
	m.Registry.Each(func(name string, v interface{}) {
		if len(name) <= len(formatPrefix) || name[:len(formatPrefix)] != formatPrefix {
			return
		}
		if c, ok := v.(gometrics.Counter); ok {
			counts[name[len(formatPrefix):]] = c.Count()
		}
	})
	return counts
}

// View reads the current values.
func (m *Metrics) View() View {
	timer := m.Duration.Snapshot()
	return View{
		Succeeded:    m.Succeeded.Count(),
		Failed:       m.Failed.Count(),
		Bytes:        m.Bytes.Count(),
		Rate1:        m.Succeeded.Rate1(),
		MeanDuration: time.Duration(timer.Mean()),
		MaxDuration:  time.Duration(timer.Max()),
	}
}

// Stop unregisters everything, stopping the meter tickers.
func (m *Metrics) Stop() {
	m.Registry.UnregisterAll()
}
