package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fixedExtractor returns a canned signal list regardless of incident.
type fixedExtractor struct {
	signals []Signal
}

func (e *fixedExtractor) Extract(_ Incident) []Signal { return e.signals }

func demoSignals() []Signal {
	return []Signal{
		{ID: "sig_001", Type: "log_anomaly", Description: "Error rate 3.1x above baseline", Value: Float(3.1), Severity: SeverityHigh, Source: "log_analyzer"},
		{ID: "sig_002", Type: "resource_saturation", Description: "DB connection pool 100% saturated (5/5)", Value: Float(1.0), Severity: SeverityHigh, Source: "metrics_analyzer"},
	}
}

func newTestRuntime(t *testing.T, agents ...Agent) *Runtime {
	t.Helper()
	rt := NewRuntime(Config{
		Timeout:   time.Second,
		Extractor: &fixedExtractor{signals: demoSignals()},
	})
	for _, a := range agents {
		if err := rt.Register(a); err != nil {
			t.Fatalf("Register(%s): %v", a.Name(), err)
		}
	}
	return rt
}

// Scenario: zero agents registered. Execute still returns a complete,
// review-flagged result.
func TestRuntime_NoAgents(t *testing.T) {
	rt := newTestRuntime(t)

	res := rt.Execute(context.Background(), Incident{DeploymentID: "deploy-1"}, nil)

	if len(res.RankedHypotheses) != 0 {
		t.Errorf("ranked: got %d want 0", len(res.RankedHypotheses))
	}
	if !res.RequiresHumanReview {
		t.Error("empty ranking must force human review")
	}
	if res.ExecutionID == "" {
		t.Error("missing execution ID")
	}
	if res.Synthesis == nil || res.Synthesis.ConfidenceInRanking != 0 {
		t.Errorf("expected zero-confidence fallback synthesis, got %+v", res.Synthesis)
	}
}

// Scenario: an agent that fails on every call. No failure escapes the
// pipeline; the result is well-formed.
func TestRuntime_AlwaysFailingAgent(t *testing.T) {
	rt := newTestRuntime(t, &stubAgent{name: "doomed", err: errors.New("always broken")})

	res := rt.Execute(context.Background(), Incident{DeploymentID: "deploy-2"}, nil)

	if len(res.RankedHypotheses) != 0 {
		t.Errorf("ranked: got %d want 0", len(res.RankedHypotheses))
	}
	if !res.RequiresHumanReview {
		t.Error("expected human review flag")
	}
	if len(res.SignalsUsed) != 2 {
		t.Errorf("signals used: got %d want 2", len(res.SignalsUsed))
	}
}

func TestRuntime_EndToEndMerge(t *testing.T) {
	rt := newTestRuntime(t,
		&stubAgent{name: "agent_a", hypotheses: []Hypothesis{{
			Label: "DB Pool", Description: "pool pressure",
			Confidence: 0.80, Severity: SeverityHigh,
			SupportingSignals: []string{"sig_001"}, ContributingAgent: "agent_a",
		}}},
		&stubAgent{name: "agent_b", hypotheses: []Hypothesis{{
			Label: "DB Connection Pool Exhaustion", Description: "pool exhausted",
			Confidence: 0.70, Severity: SeverityHigh,
			SupportingSignals: []string{"sig_001"}, ContributingAgent: "agent_b",
		}}},
	)

	res := rt.Execute(context.Background(), Incident{DeploymentID: "deploy-3"}, nil)

	if len(res.RankedHypotheses) != 1 {
		t.Fatalf("ranked: got %d want 1", len(res.RankedHypotheses))
	}
	top := res.RankedHypotheses[0]
	if top.Confidence != 0.90 {
		t.Errorf("top confidence: got %v want 0.90", top.Confidence)
	}
	if top.ContributingAgent != "agent_a, agent_b" {
		t.Errorf("contributing agent: got %q", top.ContributingAgent)
	}
	if res.RequiresHumanReview {
		t.Error("confident result should not require review")
	}
	if res.Synthesis == nil || res.Synthesis.ConfidenceInRanking != 0.90 {
		t.Errorf("fallback synthesis should carry top confidence, got %+v", res.Synthesis)
	}
}

// A fabricated citation is rejected by the judge and contributes nothing,
// but the pipeline completes.
func TestRuntime_FabricatedCitationRejected(t *testing.T) {
	rt := newTestRuntime(t,
		&stubAgent{name: "fabulist", hypotheses: []Hypothesis{{
			Label: "Ghost Cause", Confidence: 0.95,
			SupportingSignals: []string{"sig_999"}, ContributingAgent: "fabulist",
		}}},
		&stubAgent{name: "honest", hypotheses: []Hypothesis{{
			Label: "Grounded Cause", Confidence: 0.60,
			SupportingSignals: []string{"sig_002"}, ContributingAgent: "honest",
		}}},
	)

	sink := &recordingSink{}
	res := rt.Execute(context.Background(), Incident{DeploymentID: "deploy-4"}, sink)

	if len(res.RankedHypotheses) != 1 || res.RankedHypotheses[0].Label != "Grounded Cause" {
		t.Fatalf("expected only the grounded hypothesis, got %+v", res.RankedHypotheses)
	}

	var rejected []Event
	for _, e := range sink.byAgent("fabulist") {
		if e.Type == EventRejected {
			rejected = append(rejected, e)
		}
	}
	if len(rejected) != 1 || !strings.Contains(rejected[0].Message, "sig_999") {
		t.Errorf("expected one rejection event naming sig_999, got %+v", rejected)
	}
}

// Top confidence below 0.5 forces the review flag even with survivors.
func TestRuntime_LowConfidenceForcesReview(t *testing.T) {
	rt := newTestRuntime(t, &stubAgent{name: "meek", hypotheses: []Hypothesis{{
		Label: "Weak Guess", Confidence: 0.3,
		SupportingSignals: []string{"sig_001"}, ContributingAgent: "meek",
	}}})

	res := rt.Execute(context.Background(), Incident{}, nil)

	if len(res.RankedHypotheses) != 1 {
		t.Fatalf("ranked: got %d want 1", len(res.RankedHypotheses))
	}
	if !res.RequiresHumanReview {
		t.Error("top confidence 0.3 must force human review")
	}
}

// Invocations are isolated: two runs on one runtime see identical fresh
// state and produce distinct execution IDs.
func TestRuntime_InvocationIsolation(t *testing.T) {
	rt := newTestRuntime(t, &stubAgent{name: "steady", hypotheses: []Hypothesis{{
		Label: "Same Every Time", Confidence: 0.8,
		SupportingSignals: []string{"sig_001"}, ContributingAgent: "steady",
	}}})

	first := rt.Execute(context.Background(), Incident{}, nil)
	second := rt.Execute(context.Background(), Incident{}, nil)

	if first.ExecutionID == second.ExecutionID {
		t.Error("execution IDs must be unique per invocation")
	}
	if len(first.RankedHypotheses) != len(second.RankedHypotheses) {
		t.Error("state leaked between invocations")
	}
}

// countingSynth records invocations and returns a fixed narrative.
type countingSynth struct {
	calls int
	fail  bool
}

func (s *countingSynth) Synthesize(_ context.Context, _ []Signal, ranked []Hypothesis) (SynthesisResult, error) {
	s.calls++
	if s.fail {
		return SynthesisResult{}, errors.New("synthesis backend down")
	}
	return SynthesisResult{Summary: "custom narrative", KeyFinding: "finding", ConfidenceInRanking: 0.7}, nil
}

func TestRuntime_SynthesizerCollaborator(t *testing.T) {
	synth := &countingSynth{}
	rt := NewRuntime(Config{
		Timeout:     time.Second,
		Extractor:   &fixedExtractor{signals: demoSignals()},
		Synthesizer: synth,
	})

	res := rt.Execute(context.Background(), Incident{}, nil)

	if synth.calls != 1 {
		t.Errorf("synthesizer calls: got %d want 1", synth.calls)
	}
	if res.Synthesis == nil || res.Synthesis.Summary != "custom narrative" {
		t.Errorf("synthesis: got %+v", res.Synthesis)
	}
}

// A failing synthesizer degrades to the deterministic fallback narrative.
func TestRuntime_SynthesizerFailureFallsBack(t *testing.T) {
	rt := NewRuntime(Config{
		Timeout:     time.Second,
		Extractor:   &fixedExtractor{signals: demoSignals()},
		Synthesizer: &countingSynth{fail: true},
	})

	res := rt.Execute(context.Background(), Incident{}, nil)

	if res.Synthesis == nil || res.Synthesis.KeyFinding != "Insufficient evidence to identify a likely root cause." {
		t.Errorf("expected fallback narrative, got %+v", res.Synthesis)
	}
}

func TestRuntime_DuplicateRegistrationFatal(t *testing.T) {
	rt := newTestRuntime(t, &stubAgent{name: "solo"})
	if err := rt.Register(&stubAgent{name: "solo"}); !errors.Is(err, ErrDuplicateAgent) {
		t.Fatalf("got %v, want ErrDuplicateAgent", err)
	}
}
