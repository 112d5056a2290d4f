package pipeline

import (
	"context"
	"time"
)

// Severity levels carried by signals and hypotheses.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Signal is a verified, immutable fact extracted from an incident before any
// agent runs. Agents reason over signals and cite their IDs as evidence; they
// never create or modify them.
type Signal struct {
	// ID is assigned sequentially by the extractor ("sig_001", "sig_002", ...).
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	// Value is nil for qualitative signals with no meaningful scalar.
	Value    *float64 `json:"value,omitempty"`
	Severity string   `json:"severity"`
	// Source names the analyzer that produced this signal.
	Source string `json:"source"`
}

// Float returns a *float64 for use as a Signal value.
func Float(v float64) *float64 { return &v }

// Hypothesis is a candidate root cause citing one or more signals.
//
// ContributingAgent is the single agent name set at creation time.
// After the aggregator merges a group, ContributingAgents holds the sorted
// set of every member's agent and ContributingAgent the same set joined
// with ", " for display and serialization.
type Hypothesis struct {
	Label              string   `json:"label"`
	Description        string   `json:"description"`
	Confidence         float64  `json:"confidence"`
	Severity           string   `json:"severity"`
	SupportingSignals  []string `json:"supporting_signals"`
	ContributingAgent  string   `json:"contributing_agent"`
	ContributingAgents []string `json:"contributing_agents,omitempty"`
}

// AgentResult is the output of a single agent for one invocation.
// ExecutionTime is measured and written by the executor; whatever the agent
// itself reports is discarded.
type AgentResult struct {
	AgentName     string        `json:"agent_name"`
	Hypotheses    []Hypothesis  `json:"hypotheses"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// Verdict is the judge's pass/fail decision on one AgentResult. The original
// result is retained regardless of validity so callers can log context.
// RejectionReason is set iff Valid is false.
type Verdict struct {
	Valid           bool
	Result          AgentResult
	RejectionReason string
}

// SynthesisResult is the narrative explanation of a ranking.
type SynthesisResult struct {
	Summary             string  `json:"summary"`
	KeyFinding          string  `json:"key_finding"`
	ConfidenceInRanking float64 `json:"confidence_in_ranking"`
}

// ExecutionResult is the final output of one Runtime.Execute invocation.
type ExecutionResult struct {
	ExecutionID         string           `json:"execution_id"`
	RankedHypotheses    []Hypothesis     `json:"ranked_hypotheses"`
	SignalsUsed         []Signal         `json:"signals_used"`
	Synthesis           *SynthesisResult `json:"synthesis,omitempty"`
	RequiresHumanReview bool             `json:"requires_human_review"`
}

// Commit is one entry of an incident's recent-commit window.
type Commit struct {
	SHA         string `json:"sha"`
	Message     string `json:"message"`
	DiffSummary string `json:"diff_summary"`
}

// Incident is the raw payload that enters the pipeline. Everything
// downstream (signals, hypotheses, the ranked output) derives from it.
type Incident struct {
	DeploymentID   string             `json:"deployment_id"`
	Logs           []string           `json:"logs"`
	Metrics        map[string]float64 `json:"metrics"`
	RecentCommits  []Commit           `json:"recent_commits"`
	ConfigSnapshot map[string]any     `json:"config_snapshot"`
}

// Snapshot is the read-only context handed unmodified to every agent.
// It is built once per invocation, after extraction and before dispatch,
// so all agents observe the same signal list.
type Snapshot struct {
	Signals  []Signal
	Incident Incident
}

// Agent is an independent analysis unit. Names must be unique within a
// Registry. Run may fail or overrun the executor's timeout; either outcome
// is treated as "produced nothing" and never affects sibling agents.
// Implementations should honor ctx cancellation to release abandoned work.
type Agent interface {
	Name() string
	Run(ctx context.Context, snap Snapshot) (AgentResult, error)
}

// Extractor converts a raw incident into the ordered signal list for one
// invocation. Implementations must isolate failures of their own
// sub-analyzers: a failing analyzer must not suppress the others' signals.
type Extractor interface {
	Extract(incident Incident) []Signal
}

// Synthesizer produces the narrative explanation of a ranking. Optional;
// when absent the runtime falls back to a deterministic canned narrative.
type Synthesizer interface {
	Synthesize(ctx context.Context, signals []Signal, ranked []Hypothesis) (SynthesisResult, error)
}
