// Package metrics exports report summaries as Prometheus metrics, written
// to a node_exporter textfile so CI hosts can scrape test health.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ancients-collective/allurexl/internal/types"
)

const (
	MetricsNamespace = "allurexl"
)

// statusLabels are the values of the status label on the results gauge.
var statusLabels = []types.ResultStatus{
	types.StatusPassed,
	types.StatusFailed,
	types.StatusBroken,
	types.StatusSkipped,
	types.StatusUnknown,
}

// Metrics holds the gauges for one report. Each Metrics has its own
// registry so tests and repeated runs never share state.
type Metrics struct {
	registry *prometheus.Registry

	results         *prometheus.GaugeVec
	sectionResults  *prometheus.GaugeVec
	durationSeconds prometheus.Gauge
	parseErrors     prometheus.Gauge
	skippedFiles    prometheus.Gauge
	lastRun         prometheus.Gauge
}

// New registers the report gauges on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		results: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "results",
			Help:      "Number of test results in the last report, by status",
		}, []string{"status"}),
		sectionResults: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "section_results",
			Help:      "Number of test results in the last report, by section and status",
		}, []string{"section", "status"}),
		durationSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "duration_seconds",
			Help:      "Sum of test durations in the last report",
		}),
		parseErrors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "parse_errors",
			Help:      "Result files that could not be parsed in the last report",
		}),
		skippedFiles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "skipped_files",
			Help:      "Result files that were not read in the last report",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last report was generated",
		}),
	}
}

// Registry returns the registry the gauges live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from the report.
func (m *Metrics) Observe(r *types.Report) {
	s := r.Summary
	counts := map[types.ResultStatus]int{
		types.StatusPassed:  s.Passed,
		types.StatusFailed:  s.Failed,
		types.StatusBroken:  s.Broken,
		types.StatusSkipped: s.Skipped,
		types.StatusUnknown: s.Other,
	}
	for _, st := range statusLabels {
		m.results.WithLabelValues(string(st)).Set(float64(counts[st]))
	}

	m.sectionResults.Reset()
	for _, sec := range r.Sections {
		m.sectionResults.WithLabelValues(sec.Name, string(types.StatusPassed)).Set(float64(sec.Passed))
		m.sectionResults.WithLabelValues(sec.Name, string(types.StatusFailed)).Set(float64(sec.Failed))
		m.sectionResults.WithLabelValues(sec.Name, string(types.StatusBroken)).Set(float64(sec.Broken))
		m.sectionResults.WithLabelValues(sec.Name, string(types.StatusSkipped)).Set(float64(sec.Skipped))
		m.sectionResults.WithLabelValues(sec.Name, string(types.StatusUnknown)).Set(float64(sec.Other))
	}

	m.durationSeconds.Set(float64(s.DurationMS) / 1000)
	m.parseErrors.Set(float64(s.ParseErrors))
	m.skippedFiles.Set(float64(s.SkippedFiles))
	m.lastRun.Set(float64(r.GeneratedAt.Unix()))
}

// WriteTextfile writes the gauges in the Prometheus text format. The
// file is replaced atomically so a scraper never reads half of it.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
