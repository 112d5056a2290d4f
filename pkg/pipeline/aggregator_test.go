package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validVerdict(hypotheses ...Hypothesis) Verdict {
	return Verdict{
		Valid:  true,
		Result: AgentResult{AgentName: hypotheses[0].ContributingAgent, Hypotheses: hypotheses},
	}
}

// Scenario: two agents corroborate the same root cause under different
// labels. One merged hypothesis, max base confidence + one agreement bonus,
// sorted joined agent list, deduplicated signals.
func TestAggregator_MergesCorroboratingHypotheses(t *testing.T) {
	verdicts := []Verdict{
		validVerdict(Hypothesis{
			Label:             "DB Pool",
			Confidence:        0.80,
			Severity:          SeverityHigh,
			SupportingSignals: []string{"sig_001"},
			ContributingAgent: "agent_a",
		}),
		validVerdict(Hypothesis{
			Label:             "DB Connection Pool Exhaustion",
			Confidence:        0.70,
			Severity:          SeverityHigh,
			SupportingSignals: []string{"sig_001"},
			ContributingAgent: "agent_b",
		}),
	}

	ranked := Aggregator{}.Aggregate(verdicts)

	if len(ranked) != 1 {
		t.Fatalf("got %d hypotheses, want 1 merged", len(ranked))
	}
	got := ranked[0]
	if got.Confidence != 0.90 {
		t.Errorf("confidence: got %v want 0.90", got.Confidence)
	}
	if got.ContributingAgent != "agent_a, agent_b" {
		t.Errorf("contributing agent: got %q want %q", got.ContributingAgent, "agent_a, agent_b")
	}
	if diff := cmp.Diff([]string{"agent_a", "agent_b"}, got.ContributingAgents); diff != "" {
		t.Errorf("contributing agents (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sig_001"}, got.SupportingSignals); diff != "" {
		t.Errorf("supporting signals (-want +got):\n%s", diff)
	}
}

// Merge law: k matching hypotheses with max base confidence c yield
// min(c + 0.1*(k-1), 1.0).
func TestAggregator_MergeLaw(t *testing.T) {
	cases := []struct {
		k    int
		base float64
		want float64
	}{
		{k: 1, base: 0.60, want: 0.60},
		{k: 2, base: 0.80, want: 0.90},
		{k: 3, base: 0.75, want: 0.95},
		{k: 4, base: 0.85, want: 1.00}, // capped
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("k=%d", tc.k), func(t *testing.T) {
			var verdicts []Verdict
			for i := 0; i < tc.k; i++ {
				conf := tc.base - 0.05*float64(i) // first member holds the max
				verdicts = append(verdicts, validVerdict(Hypothesis{
					Label:             "Cache Degradation",
					Confidence:        conf,
					SupportingSignals: []string{"sig_001"},
					ContributingAgent: fmt.Sprintf("agent_%d", i),
				}))
			}

			ranked := Aggregator{}.Aggregate(verdicts)
			if len(ranked) != 1 {
				t.Fatalf("got %d groups, want 1", len(ranked))
			}
			if math.Abs(ranked[0].Confidence-tc.want) > 1e-9 {
				t.Errorf("confidence: got %v want %v", ranked[0].Confidence, tc.want)
			}
		})
	}
}

// Scenario: 8 mutually non-matching hypotheses. Exactly 5 survive, the 5
// highest by confidence, descending.
func TestAggregator_TopFiveCap(t *testing.T) {
	labels := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel"}
	var verdicts []Verdict
	for i, label := range labels {
		verdicts = append(verdicts, validVerdict(Hypothesis{
			Label:             label,
			Confidence:        0.1 + 0.1*float64(i), // 0.1 .. 0.8
			SupportingSignals: []string{"sig_001"},
			ContributingAgent: "agent",
		}))
	}

	ranked := Aggregator{}.Aggregate(verdicts)

	if len(ranked) != MaxRanked {
		t.Fatalf("got %d hypotheses, want %d", len(ranked), MaxRanked)
	}
	wantOrder := []string{"Hotel", "Golf", "Foxtrot", "Echo", "Delta"}
	for i, h := range ranked {
		if h.Label != wantOrder[i] {
			t.Errorf("ranked[%d]: got %q want %q", i, h.Label, wantOrder[i])
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Confidence > ranked[i-1].Confidence {
			t.Errorf("ranking not descending at %d", i)
		}
	}
}

func TestAggregator_InvalidVerdictsContributeNothing(t *testing.T) {
	verdicts := []Verdict{
		{
			Valid:           false,
			Result:          AgentResult{AgentName: "bad", Hypotheses: []Hypothesis{{Label: "Noise", Confidence: 0.99, SupportingSignals: []string{"sig_001"}}}},
			RejectionReason: "cites unknown signal",
		},
		validVerdict(Hypothesis{
			Label:             "Real Finding",
			Confidence:        0.6,
			SupportingSignals: []string{"sig_001"},
			ContributingAgent: "good",
		}),
	}

	ranked := Aggregator{}.Aggregate(verdicts)
	if len(ranked) != 1 || ranked[0].Label != "Real Finding" {
		t.Fatalf("invalid verdict leaked into aggregation: %+v", ranked)
	}
}

func TestAggregator_EmptyInput(t *testing.T) {
	if got := (Aggregator{}).Aggregate(nil); len(got) != 0 {
		t.Errorf("nil input: got %+v, want empty", got)
	}
	if got := (Aggregator{}).Aggregate([]Verdict{{Valid: true}}); len(got) != 0 {
		t.Errorf("no hypotheses: got %+v, want empty", got)
	}
}

// Aggregation is idempotent over the same verdict list: a second pass over
// the same inputs yields identical output.
func TestAggregator_Idempotent(t *testing.T) {
	verdicts := []Verdict{
		validVerdict(Hypothesis{Label: "DB Pool", Confidence: 0.8, SupportingSignals: []string{"sig_001"}, ContributingAgent: "a"}),
		validVerdict(Hypothesis{Label: "db pool exhaustion", Confidence: 0.7, SupportingSignals: []string{"sig_002"}, ContributingAgent: "b"}),
		validVerdict(Hypothesis{Label: "Cache Miss Storm", Confidence: 0.65, SupportingSignals: []string{"sig_003"}, ContributingAgent: "c"}),
	}

	first := Aggregator{}.Aggregate(verdicts)
	second := Aggregator{}.Aggregate(verdicts)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("aggregate not idempotent (-first +second):\n%s", diff)
	}
}

// Equal confidence preserves flattening order (stable sort).
func TestAggregator_StableTieBreak(t *testing.T) {
	verdicts := []Verdict{
		validVerdict(Hypothesis{Label: "First Seen", Confidence: 0.7, SupportingSignals: []string{"sig_001"}, ContributingAgent: "a"}),
		validVerdict(Hypothesis{Label: "Second Seen", Confidence: 0.7, SupportingSignals: []string{"sig_002"}, ContributingAgent: "b"}),
	}

	ranked := Aggregator{}.Aggregate(verdicts)
	if len(ranked) != 2 || ranked[0].Label != "First Seen" {
		t.Errorf("tie-break violated flattening order: %+v", ranked)
	}
}

// Grouping is greedy against the group representative only: a member may
// match the representative without matching other members.
func TestAggregator_RepresentativeChaining(t *testing.T) {
	verdicts := []Verdict{
		validVerdict(Hypothesis{Label: "Pool", Confidence: 0.5, SupportingSignals: []string{"sig_001"}, ContributingAgent: "a"}),
		validVerdict(Hypothesis{Label: "DB Pool Exhaustion", Confidence: 0.6, SupportingSignals: []string{"sig_002"}, ContributingAgent: "b"}),
		validVerdict(Hypothesis{Label: "Thread Pool Starvation", Confidence: 0.4, SupportingSignals: []string{"sig_003"}, ContributingAgent: "c"}),
	}

	// All three contain "Pool" and therefore match the representative,
	// even though the second and third do not match each other.
	ranked := Aggregator{}.Aggregate(verdicts)
	if len(ranked) != 1 {
		t.Fatalf("got %d groups, want 1 via representative chaining", len(ranked))
	}
	if got := ranked[0].Confidence; math.Abs(got-0.8) > 1e-9 { // 0.6 + 0.1*2
		t.Errorf("confidence: got %v want 0.8", got)
	}
}

// Confidence is rounded to 4 decimal places after the bonus.
func TestAggregator_RoundsToFourDecimals(t *testing.T) {
	verdicts := []Verdict{
		validVerdict(Hypothesis{Label: "X", Confidence: 0.33333, SupportingSignals: []string{"sig_001"}, ContributingAgent: "a"}),
		validVerdict(Hypothesis{Label: "X", Confidence: 0.1, SupportingSignals: []string{"sig_001"}, ContributingAgent: "b"}),
	}

	ranked := Aggregator{}.Aggregate(verdicts)
	if len(ranked) != 1 {
		t.Fatal("expected one group")
	}
	if got := ranked[0].Confidence; got != 0.4333 {
		t.Errorf("confidence: got %v want 0.4333", got)
	}
}
