package extract

import (
	"fmt"
	"math"

	"obelisk/pkg/pipeline"
)

const (
	// latencySpikeMultiplier: p99 must exceed this multiple of baseline.
	latencySpikeMultiplier = 2.0
	// poolSaturationThreshold: used/max ratio that counts as saturated.
	poolSaturationThreshold = 0.90
	// cacheDegradationThreshold: hit rate below this fraction of baseline.
	cacheDegradationThreshold = 0.50
)

// MetricsAnalyzer extracts signals from the incident metrics map: latency
// spikes, DB connection pool saturation, cache hit-rate degradation.
// Missing keys are silently skipped; the analyzer emits only what it can
// compute.
type MetricsAnalyzer struct{}

func (MetricsAnalyzer) Name() string { return "metrics_analyzer" }

func (a MetricsAnalyzer) Analyze(incident pipeline.Incident) []pipeline.Signal {
	m := incident.Metrics
	if len(m) == 0 {
		return nil
	}

	var signals []pipeline.Signal
	signals = append(signals, a.checkLatency(m)...)
	signals = append(signals, a.checkDBPool(m)...)
	signals = append(signals, a.checkCache(m)...)
	return signals
}

func (a MetricsAnalyzer) checkLatency(m map[string]float64) []pipeline.Signal {
	p99, ok1 := m["latency_p99_ms"]
	baseline, ok2 := m["latency_baseline_p99_ms"]
	if !ok1 || !ok2 || baseline == 0 {
		return nil
	}

	ratio := p99 / baseline
	if ratio < latencySpikeMultiplier {
		return nil
	}

	severity := pipeline.SeverityMedium
	if ratio >= 5 {
		severity = pipeline.SeverityHigh
	}
	return []pipeline.Signal{{
		Type: "metric_spike",
		Description: fmt.Sprintf("p99 latency %.0fms vs baseline %.0fms (%.0fx spike)",
			p99, baseline, ratio),
		Value:    pipeline.Float(math.Round(ratio*10) / 10),
		Severity: severity,
		Source:   a.Name(),
	}}
}

func (a MetricsAnalyzer) checkDBPool(m map[string]float64) []pipeline.Signal {
	used, ok1 := m["db_connection_pool_used"]
	max, ok2 := m["db_connection_pool_max"]
	if !ok1 || !ok2 || max == 0 {
		return nil
	}

	saturation := used / max
	if saturation < poolSaturationThreshold {
		return nil
	}

	return []pipeline.Signal{{
		Type: "resource_saturation",
		Description: fmt.Sprintf("DB connection pool %.0f%% saturated (%.0f/%.0f connections used)",
			saturation*100, used, max),
		Value:    pipeline.Float(math.Round(saturation*1000) / 1000),
		Severity: pipeline.SeverityHigh,
		Source:   a.Name(),
	}}
}

func (a MetricsAnalyzer) checkCache(m map[string]float64) []pipeline.Signal {
	hitRate, ok := m["cache_hit_rate"]
	if !ok {
		return nil
	}
	baseline, hasBaseline := m["cache_hit_rate_baseline"]

	absoluteBad := hitRate < 0.50
	relativeBad := hasBaseline && baseline > 0 && hitRate < baseline*cacheDegradationThreshold
	if !absoluteBad && !relativeBad {
		return nil
	}

	var desc string
	if hasBaseline {
		desc = fmt.Sprintf("Cache hit rate dropped from %.0f%% to %.0f%% (%.0f%% degradation)",
			baseline*100, hitRate*100, (baseline-hitRate)/baseline*100)
	} else {
		desc = fmt.Sprintf("Cache hit rate is %.0f%% - below healthy threshold", hitRate*100)
	}

	severity := pipeline.SeverityMedium
	if hitRate < 0.20 {
		severity = pipeline.SeverityHigh
	}
	return []pipeline.Signal{{
		Type:        "metric_degradation",
		Description: desc,
		Value:       pipeline.Float(math.Round(hitRate*1000) / 1000),
		Severity:    severity,
		Source:      a.Name(),
	}}
}
