package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are millisecond buckets shared by the latency histograms.
var HistogramBuckets = []float64{
	// fast (0 - 500ms)
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,
	// medium (500ms - 2s)
	750, 1000, 1500, 2000,
	// slow, up to the webhook processing timeout and beyond
	3000, 5000, 7500, 10000, 15000, 30000,
}

// Metric is a definition for the name, description, type and labels of each
// metric plus the prometheus.Collector built from it.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "gauge":
		return prometheus.NewGauge(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets,
		}, m.Args)
	case "histogram":
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets,
		})
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "summary":
		return prometheus.NewSummary(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	}
	return nil
}

// register registers c, reusing an already registered collector of the same
// description so repeated construction in one process does not fail.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return c, err
	}
	return c, nil
}

// MillisecondsSince returns the elapsed time since start in milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)
