package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the per-agent wall-clock budget when none is configured.
const DefaultTimeout = 30 * time.Second

// Executor fans out agents concurrently and collects their results.
//
// The guarantee: one agent failing never causes other agents to be skipped,
// delayed, or altered. Each agent runs in its own goroutine behind its own
// panic boundary and its own timeout. Failures are swallowed here, logged
// with the agent's name, elapsed time, and cause, and the failed agent is
// simply absent from the returned slice.
//
// The executor owns execution timing: it overwrites whatever the agent
// self-reported with its own wall-clock measurement.
type Executor struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewExecutor returns an executor with the given per-agent timeout.
// Non-positive means DefaultTimeout. A nil logger means slog.Default.
func NewExecutor(timeout time.Duration, logger *slog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{timeout: timeout, log: logger}
}

// Timeout returns the configured per-agent timeout.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Execute runs every agent concurrently against snap and returns the results
// of those that completed successfully within the timeout, in the same order
// as the agents slice. An empty agent list returns nil with no work done.
//
// sink, when non-nil, receives started/completed/errored events with
// timestamps relative to the start of the fan-out. The executor behaves
// identically whether or not a sink is attached.
func (e *Executor) Execute(ctx context.Context, agents []Agent, snap Snapshot, sink EventSink) []AgentResult {
	if len(agents) == 0 {
		return nil
	}

	fanoutStart := time.Now()

	// Indexed slots keep the output in registration order regardless of
	// completion order; the aggregator's tie-breaking depends on it.
	slots := make([]*AgentResult, len(agents))

	// Plain errgroup, not WithContext: a failed agent must never cancel
	// its siblings. runAgent always returns nil.
	var g errgroup.Group
	for i, ag := range agents {
		g.Go(func() error {
			slots[i] = e.runAgent(ctx, ag, snap, sink, fanoutStart)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]AgentResult, 0, len(agents))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// runAgent runs one agent with a timeout and a panic boundary. It never
// panics and never returns an error: every failure is logged and collapsed
// into a nil result, which Execute filters out.
func (e *Executor) runAgent(ctx context.Context, ag Agent, snap Snapshot, sink EventSink, fanoutStart time.Time) *AgentResult {
	emit := func(t EventType, msg string) {
		if sink != nil {
			sink.OnEvent(Event{Agent: ag.Name(), Type: t, Message: msg, Elapsed: time.Since(fanoutStart)})
		}
	}

	emit(EventStarted, "analyzing")
	agentStart := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		result AgentResult
		err    error
	}
	// Buffered so an abandoned agent can still deliver and exit after we
	// stop waiting on it.
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		res, err := ag.Run(runCtx, snap)
		done <- outcome{result: res, err: err}
	}()

	select {
	case oc := <-done:
		elapsed := time.Since(agentStart)
		if oc.err != nil {
			emit(EventErrored, oc.err.Error())
			e.log.Error("agent failed", "agent", ag.Name(), "elapsed", elapsed, "error", oc.err)
			return nil
		}
		oc.result.ExecutionTime = elapsed
		noun := "hypotheses"
		if len(oc.result.Hypotheses) == 1 {
			noun = "hypothesis"
		}
		emit(EventCompleted, fmt.Sprintf("%d %s generated", len(oc.result.Hypotheses), noun))
		return &oc.result

	case <-runCtx.Done():
		// Stop waiting. The agent's goroutine keeps the cancelled context;
		// a well-behaved agent unwinds, a deaf one runs to completion
		// unobserved and its result is discarded via the buffered channel.
		elapsed := time.Since(agentStart)
		emit(EventErrored, fmt.Sprintf("timed out after %.1fs", elapsed.Seconds()))
		e.log.Error("agent timed out",
			"agent", ag.Name(),
			"elapsed", elapsed,
			"timeout", e.timeout,
			"cause", runCtx.Err(),
		)
		return nil
	}
}
