// Package metrics exports evaluation results in the Prometheus text format
// for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/redactyl/evgate/internal/gate"
)

// Exporter holds the gauges for one evaluation.
type Exporter struct {
	registry *prometheus.Registry

	findings      *prometheus.GaugeVec
	total         prometheus.Gauge
	filtered      prometheus.Gauge
	unknown       prometheus.Gauge
	evidenceFiles prometheus.Gauge
	pass          prometheus.Gauge
}

// NewExporter creates an exporter backed by its own registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evgate_findings",
			Help: "Counted findings by severity (allowlisted findings excluded)",
		}, []string{"severity"}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evgate_findings_read",
			Help: "All findings read from evidence, allowlisted included",
		}),
		filtered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evgate_findings_filtered",
			Help: "Findings exempted by the policy allowlist",
		}),
		unknown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evgate_findings_unknown_severity",
			Help: "Counted findings whose severity is not in max_findings",
		}),
		evidenceFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evgate_evidence_files",
			Help: "Normalized evidence files evaluated",
		}),
		pass: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evgate_verdict_pass",
			Help: "1 if the security gate passed, 0 if it failed",
		}),
	}
	e.registry.MustRegister(e.findings, e.total, e.filtered, e.unknown, e.evidenceFiles, e.pass)
	return e
}

// Observe records r.
func (e *Exporter) Observe(r *gate.Result) {
	e.findings.Reset()
	for sev, n := range r.Counts {
		e.findings.WithLabelValues(sev).Set(float64(n))
	}
	e.total.Set(float64(r.Total))
	e.filtered.Set(float64(r.Filtered))
	e.unknown.Set(float64(r.Unknown))
	e.evidenceFiles.Set(float64(len(r.EvidenceFiles)))
	if r.Passed() {
		e.pass.Set(1)
	} else {
		e.pass.Set(0)
	}
}

// Gatherer exposes the registry.
func (e *Exporter) Gatherer() prometheus.Gatherer { return e.registry }

// WriteTextfile atomically writes the current metrics to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// WriteResult is the one-shot form used by `evgate evaluate`.
func WriteResult(path string, r *gate.Result) error {
	e := NewExporter()
	e.Observe(r)
	return e.WriteTextfile(path)
}
