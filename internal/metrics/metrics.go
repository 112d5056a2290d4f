// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline. A Collector owns its registry, so tests and embedded uses
// never collide on duplicate registration.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"obelisk/pkg/pipeline"
)

// Collector holds the pipeline's metric families.
type Collector struct {
	registry *prometheus.Registry

	executionsTotal   prometheus.Counter
	executionDuration prometheus.Histogram
	agentRunsTotal    *prometheus.CounterVec
	agentRunDuration  *prometheus.HistogramVec
	rejectionsTotal   *prometheus.CounterVec
	reviewsFlagged    prometheus.Counter
	signalsExtracted  prometheus.Histogram
}

// NewCollector registers all metric families on a fresh registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		executionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Total number of pipeline executions",
		}),
		executionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock duration of a full pipeline execution",
			Buckets:   prometheus.DefBuckets,
		}),
		agentRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_runs_total",
			Help:      "Agent runs by agent name and outcome",
		}, []string{"agent", "outcome"}),
		agentRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_run_duration_seconds",
			Help:      "Duration of individual agent runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Agent results rejected by post-hoc validation",
		}, []string{"agent"}),
		reviewsFlagged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "human_reviews_flagged_total",
			Help:      "Executions that ended flagged for human review",
		}),
		signalsExtracted: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signals_extracted",
			Help:      "Signals extracted per incident",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
	}
}

// Registry returns the collector's registry for /metrics exposition.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveExecution records one finished pipeline execution.
func (c *Collector) ObserveExecution(d time.Duration, signals int, review bool) {
	c.executionsTotal.Inc()
	c.executionDuration.Observe(d.Seconds())
	c.signalsExtracted.Observe(float64(signals))
	if review {
		c.reviewsFlagged.Inc()
	}
}

// ObserveAgentRun records one agent run. outcome is "completed" or
// "errored".
func (c *Collector) ObserveAgentRun(agent, outcome string, d time.Duration) {
	c.agentRunsTotal.WithLabelValues(agent, outcome).Inc()
	c.agentRunDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// ObserveRejection records a validation rejection for an agent.
func (c *Collector) ObserveRejection(agent string) {
	c.rejectionsTotal.WithLabelValues(agent).Inc()
}

// Sink returns a fresh pipeline.EventSink that feeds agent run and
// rejection metrics from the lifecycle event stream. Per-agent durations
// are derived from the gap between an agent's started and terminal
// events. One sink serves one execution; do not reuse across runs.
func (c *Collector) Sink() pipeline.EventSink {
	return &eventSink{collector: c, started: make(map[string]time.Duration)}
}

type eventSink struct {
	collector *Collector
	mu        sync.Mutex
	started   map[string]time.Duration
}

func (s *eventSink) OnEvent(e pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e.Type {
	case pipeline.EventStarted:
		s.started[e.Agent] = e.Elapsed
	case pipeline.EventCompleted, pipeline.EventErrored:
		s.collector.ObserveAgentRun(e.Agent, string(e.Type), e.Elapsed-s.started[e.Agent])
	case pipeline.EventRejected:
		s.collector.ObserveRejection(e.Agent)
	}
}
