package metrics

import "net/http"

// nopCollector discards every metric.  Used in tests and when metrics are
// disabled in configuration.
type nopCollector struct{}

// NewNopCollector returns a Collector that discards all observations.
func NewNopCollector() Collector { return nopCollector{} }

func (nopCollector) RegisterCounter(_, _ string, _ ...string) CounterVec { return nopCounterVec{} }
func (nopCollector) RegisterGauge(_, _ string, _ ...string) GaugeVec     { return nopGaugeVec{} }
func (nopCollector) RegisterHistogram(_, _ string, _ []float64, _ ...string) HistogramVec {
	return nopHistogramVec{}
}
func (nopCollector) Handler() http.Handler { return http.NotFoundHandler() }

type nopCounterVec struct{}

func (nopCounterVec) WithLabelValues(_ ...string) Counter { return nopCounter{} }

type nopCounter struct{}

func (nopCounter) Inc()          {}
func (nopCounter) Add(_ float64) {}

type nopGaugeVec struct{}

func (nopGaugeVec) WithLabelValues(_ ...string) Gauge { return nopGauge{} }

type nopGauge struct{}

func (nopGauge) Set(_ float64) {}
func (nopGauge) Inc()          {}
func (nopGauge) Dec()          {}

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(_ ...string) Histogram { return nopHistogram{} }

type nopHistogram struct{}

func (nopHistogram) Observe(_ float64) {}
