package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// Judge validates agent results before they reach the aggregator.
//
// All checks are deterministic. Identical inputs always yield identical
// verdicts, so a validation failure can be reproduced without re-running
// any agent. Checks run in a fixed order and fail fast: the first failing
// check produces the verdict, keeping rejection reasons unambiguous.
//
// The judge reports; it does not act. Deciding what to do with a rejection
// is the runtime's job.
type Judge struct{}

// Validate runs the four checks against one result:
//
//  1. The agent name is non-empty after trimming whitespace.
//  2. Every hypothesis cites at least one signal.
//  3. Every cited signal ID exists in memory.
//  4. Every confidence lies in [0.0, 1.0].
//
// A result with zero hypotheses is valid. Absence of findings is not a
// violation.
func (Judge) Validate(result AgentResult, memory *Memory) Verdict {
	if strings.TrimSpace(result.AgentName) == "" {
		return reject(result, "agent name is empty or whitespace")
	}

	// An unsupported hypothesis is pure invention; it is not grounded in
	// any verified fact from the incident.
	for _, h := range result.Hypotheses {
		if len(h.SupportingSignals) == 0 {
			return reject(result, fmt.Sprintf(
				"hypothesis %q from agent %q cites no supporting signals",
				h.Label, result.AgentName))
		}
	}

	// Cross-reference citations against ground truth. Catches fabricated
	// signal IDs before the aggregator treats ghost evidence as real.
	known := memory.SignalIDs()
	for _, h := range result.Hypotheses {
		for _, id := range h.SupportingSignals {
			if _, ok := known[id]; !ok {
				return reject(result, fmt.Sprintf(
					"hypothesis %q from agent %q cites unknown signal ID %q (valid IDs: %s)",
					h.Label, result.AgentName, id, joinIDs(known)))
			}
		}
	}

	// Upstream construction should already keep confidence in range; this
	// check exists for results built in unusual ways.
	for _, h := range result.Hypotheses {
		if h.Confidence < 0.0 || h.Confidence > 1.0 {
			return reject(result, fmt.Sprintf(
				"hypothesis %q from agent %q has invalid confidence %v (must be 0.0-1.0)",
				h.Label, result.AgentName, h.Confidence))
		}
	}

	return Verdict{Valid: true, Result: result}
}

func reject(result AgentResult, reason string) Verdict {
	return Verdict{Valid: false, Result: result, RejectionReason: reason}
}

func joinIDs(ids map[string]struct{}) string {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
