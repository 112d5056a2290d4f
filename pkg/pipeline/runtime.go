package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ReviewConfidenceThreshold is the top-confidence floor below which a result
// is flagged for human review.
const ReviewConfidenceThreshold = 0.5

// Runtime orchestrates the full pipeline for one incident at a time:
//
//	Init -> Extract -> Dispatch -> Validate -> Aggregate -> Synthesize -> Decide -> Done
//
// The registry, executor, judge, and aggregator are created once and reused
// across invocations. Each Execute call allocates its own Memory, so
// concurrent invocations sharing one Runtime cannot interfere with each
// other; the only shared state is the read-only agent roster.
type Runtime struct {
	registry   *Registry
	executor   *Executor
	judge      Judge
	aggregator Aggregator
	extractor  Extractor
	synth      Synthesizer
	log        *slog.Logger
}

// Config configures a Runtime. Extractor is required for signal-grounded
// runs; a nil Extractor means agents receive an empty signal list (and any
// hypothesis citing a signal is rejected by the judge, which is correct:
// no evidence means nothing to ground a claim in). Synthesizer is optional.
type Config struct {
	Timeout     time.Duration
	Extractor   Extractor
	Synthesizer Synthesizer
	Logger      *slog.Logger
}

// NewRuntime builds a runtime with an empty agent roster.
func NewRuntime(cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		registry:  NewRegistry(),
		executor:  NewExecutor(cfg.Timeout, logger),
		extractor: cfg.Extractor,
		synth:     cfg.Synthesizer,
		log:       logger,
	}
}

// Register adds an agent to every future invocation. Returns
// ErrDuplicateAgent if the name is already taken.
func (r *Runtime) Register(a Agent) error {
	if err := r.registry.Register(a); err != nil {
		return err
	}
	r.log.Debug("registered agent", "agent", a.Name(), "total", r.registry.Len())
	return nil
}

// Registry exposes the agent roster (for listing and lookups).
func (r *Runtime) Registry() *Registry { return r.registry }

// Execute runs the full pipeline for one incident and returns the ranked
// result. It has no error return on purpose: nothing short of a
// configuration error (caught at Register time) aborts an invocation.
// Agent failures, timeouts, validation rejections, and extraction
// sub-failures all degrade toward fewer surviving hypotheses and, in the
// limit, an empty ranking with the human-review flag forced on.
//
// sink, when non-nil, receives agent lifecycle events; the pipeline outcome
// is identical with or without one.
func (r *Runtime) Execute(ctx context.Context, incident Incident, sink EventSink) ExecutionResult {
	execID := uuid.NewString()
	execStart := time.Now()
	agents := r.registry.All()
	r.log.Info("starting execution",
		"execution_id", execID,
		"deployment", incident.DeploymentID,
		"agents", len(agents),
	)

	// Fresh memory per invocation; runs never share evidence.
	memory := NewMemory()

	if r.extractor != nil {
		memory.AddSignals(r.extractor.Extract(incident))
	}
	r.log.Debug("extraction complete", "signals", memory.Len())

	// Snapshot is built after extraction completes, so every agent sees
	// the same signal list.
	snap := Snapshot{Signals: memory.Signals(), Incident: incident}

	results := r.executor.Execute(ctx, agents, snap, sink)
	r.log.Info("dispatch complete", "returned", len(results), "dispatched", len(agents))

	verdicts := make([]Verdict, 0, len(results))
	validCount := 0
	for _, res := range results {
		v := r.judge.Validate(res, memory)
		if v.Valid {
			validCount++
		} else {
			r.log.Warn("result rejected", "agent", res.AgentName, "reason", v.RejectionReason)
			if sink != nil {
				sink.OnEvent(Event{
					Agent:   res.AgentName,
					Type:    EventRejected,
					Message: v.RejectionReason,
					Elapsed: time.Since(execStart),
				})
			}
		}
		verdicts = append(verdicts, v)
	}
	r.log.Info("validation complete", "valid", validCount, "judged", len(verdicts))

	ranked := r.aggregator.Aggregate(verdicts)
	r.log.Info("aggregation complete", "ranked", len(ranked))

	synthesis := r.synthesize(ctx, memory.Signals(), ranked)

	requiresReview := len(ranked) == 0 || ranked[0].Confidence < ReviewConfidenceThreshold

	return ExecutionResult{
		ExecutionID:         execID,
		RankedHypotheses:    ranked,
		SignalsUsed:         memory.Signals(),
		Synthesis:           synthesis,
		RequiresHumanReview: requiresReview,
	}
}

// synthesize invokes the configured synthesizer, falling back to a
// deterministic canned narrative when none is configured or it fails.
func (r *Runtime) synthesize(ctx context.Context, signals []Signal, ranked []Hypothesis) *SynthesisResult {
	if r.synth != nil {
		res, err := r.synth.Synthesize(ctx, signals, ranked)
		if err == nil {
			return &res
		}
		r.log.Error("synthesis failed, using fallback narrative", "error", err)
	}
	fallback := fallbackSynthesis(ranked)
	return &fallback
}

// fallbackSynthesis builds the canned narrative from the top-ranked
// hypothesis, or the no-evidence message when the ranking is empty.
func fallbackSynthesis(ranked []Hypothesis) SynthesisResult {
	if len(ranked) == 0 {
		return SynthesisResult{
			Summary: "No validated hypotheses were produced from the current signal set. " +
				"A human should review logs, metrics, and recent changes directly.",
			KeyFinding:          "Insufficient evidence to identify a likely root cause.",
			ConfidenceInRanking: 0.0,
		}
	}
	top := ranked[0]
	return SynthesisResult{
		Summary: fmt.Sprintf(
			"The top-ranked hypothesis is %q with confidence %.2f, supported by %d signal(s).",
			top.Label, top.Confidence, len(top.SupportingSignals)),
		KeyFinding:          fmt.Sprintf("%s: %s", top.Label, top.Description),
		ConfidenceInRanking: top.Confidence,
	}
}
