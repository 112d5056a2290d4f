package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// stubAgent is a configurable test double: it can succeed with a fixed
// result, return an error, panic, or sleep past the executor's timeout.
type stubAgent struct {
	name       string
	hypotheses []Hypothesis
	delay      time.Duration
	err        error
	panics     bool
	selfTimed  time.Duration // timing the agent (wrongly) reports itself
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Run(ctx context.Context, _ Snapshot) (AgentResult, error) {
	if a.panics {
		panic("stub agent exploded")
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return AgentResult{}, ctx.Err()
		}
	}
	if a.err != nil {
		return AgentResult{}, a.err
	}
	return AgentResult{
		AgentName:     a.name,
		Hypotheses:    a.hypotheses,
		ExecutionTime: a.selfTimed,
	}, nil
}

func TestExecutor_EmptyAgentList(t *testing.T) {
	e := NewExecutor(time.Second, nil)
	got := e.Execute(context.Background(), nil, Snapshot{}, nil)
	if len(got) != 0 {
		t.Errorf("Execute with no agents: got %d results, want 0", len(got))
	}
}

// Fault isolation: one panicking agent and one timing out, the rest intact
// and unaffected.
func TestExecutor_FaultIsolation(t *testing.T) {
	agents := []Agent{
		&stubAgent{name: "healthy_a"},
		&stubAgent{name: "panicky", panics: true},
		&stubAgent{name: "healthy_b"},
		&stubAgent{name: "sleepy", delay: 500 * time.Millisecond},
		&stubAgent{name: "healthy_c"},
	}
	e := NewExecutor(50*time.Millisecond, nil)

	results := e.Execute(context.Background(), agents, Snapshot{}, nil)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (N-2)", len(results))
	}
	want := []string{"healthy_a", "healthy_b", "healthy_c"}
	for i, r := range results {
		if r.AgentName != want[i] {
			t.Errorf("results[%d]: got %q want %q", i, r.AgentName, want[i])
		}
	}
}

func TestExecutor_ErroringAgentExcluded(t *testing.T) {
	agents := []Agent{
		&stubAgent{name: "broken", err: errors.New("upstream unavailable")},
		&stubAgent{name: "fine"},
	}
	e := NewExecutor(time.Second, nil)

	results := e.Execute(context.Background(), agents, Snapshot{}, nil)

	if len(results) != 1 || results[0].AgentName != "fine" {
		t.Fatalf("got %+v, want only the fine agent", results)
	}
}

// The executor owns timing: an agent's self-reported value is overwritten
// with the executor's own wall-clock measurement.
func TestExecutor_OverwritesSelfReportedTiming(t *testing.T) {
	bogus := 42 * time.Hour
	agents := []Agent{&stubAgent{name: "liar", delay: 20 * time.Millisecond, selfTimed: bogus}}
	e := NewExecutor(time.Second, nil)

	results := e.Execute(context.Background(), agents, Snapshot{}, nil)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	got := results[0].ExecutionTime
	if got == bogus {
		t.Error("self-reported timing was not overwritten")
	}
	if got < 20*time.Millisecond || got > time.Second {
		t.Errorf("measured time %v outside plausible bounds", got)
	}
}

// recordingSink captures events; safe for concurrent emission.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) byAgent(name string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Agent == name {
			out = append(out, e)
		}
	}
	return out
}

func TestExecutor_LifecycleEvents(t *testing.T) {
	agents := []Agent{
		&stubAgent{name: "ok", hypotheses: []Hypothesis{{Label: "X", SupportingSignals: []string{"sig_001"}}}},
		&stubAgent{name: "bad", err: errors.New("boom")},
	}
	sink := &recordingSink{}
	e := NewExecutor(time.Second, nil)

	e.Execute(context.Background(), agents, Snapshot{}, sink)

	okEvents := sink.byAgent("ok")
	if len(okEvents) != 2 || okEvents[0].Type != EventStarted || okEvents[1].Type != EventCompleted {
		t.Errorf("ok agent events: got %+v, want started then completed", okEvents)
	}
	if okEvents[1].Message != "1 hypothesis generated" {
		t.Errorf("completed message: got %q", okEvents[1].Message)
	}

	badEvents := sink.byAgent("bad")
	if len(badEvents) != 2 || badEvents[1].Type != EventErrored {
		t.Errorf("bad agent events: got %+v, want started then errored", badEvents)
	}
}

// The executor must behave identically with no sink attached.
func TestExecutor_NilSinkIsNoop(t *testing.T) {
	agents := []Agent{&stubAgent{name: "quiet"}}
	e := NewExecutor(time.Second, nil)

	results := e.Execute(context.Background(), agents, Snapshot{}, nil)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

// A slow consumer on a ChannelSink must never stall agents: events beyond
// the buffer are dropped, the fan-out still completes promptly.
func TestChannelSink_DropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	for i := 0; i < 10; i++ {
		sink.OnEvent(Event{Agent: fmt.Sprintf("a%d", i), Type: EventStarted})
	}
	sink.Close()

	var n int
	for range sink.Events() {
		n++
	}
	if n != 1 {
		t.Errorf("buffered events: got %d want 1 (rest dropped)", n)
	}
}

func TestExecutor_TimeoutCancelsAgentContext(t *testing.T) {
	canceled := make(chan struct{})
	probe := &ctxProbeAgent{canceled: canceled}
	e := NewExecutor(30*time.Millisecond, nil)

	results := e.Execute(context.Background(), []Agent{probe}, Snapshot{}, nil)
	if len(results) != 0 {
		t.Fatalf("timed-out agent produced a result: %+v", results)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Error("agent context was never cancelled after timeout")
	}
}

// ctxProbeAgent blocks until its context is cancelled and reports it.
type ctxProbeAgent struct {
	canceled chan struct{}
}

func (a *ctxProbeAgent) Name() string { return "probe" }

func (a *ctxProbeAgent) Run(ctx context.Context, _ Snapshot) (AgentResult, error) {
	<-ctx.Done()
	close(a.canceled)
	return AgentResult{}, ctx.Err()
}
