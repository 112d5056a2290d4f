package pipeline

import (
	"math"
	"sort"
	"strings"
)

const (
	// MaxRanked bounds the final hypothesis list.
	MaxRanked = 5

	// AgreementBonus is the confidence increment per additional agent whose
	// hypothesis matched the group. Cross-agent agreement is rewarded.
	AgreementBonus = 0.1
)

// Aggregator deduplicates and ranks hypotheses from valid verdicts.
//
// Matching is case-insensitive, whitespace-trimmed, bidirectional substring
// containment on labels: "DB Pool" matches "DB Connection Pool Exhaustion".
// Grouping is greedy and order-dependent: each hypothesis joins the first
// group whose representative (first member) it matches, so two
// non-representative members of a group need not match each other directly.
// That occasionally chains loosely-related claims into one group; it is kept
// as-is because splitting such groups would require all-pairs matching and
// produce different rankings than the system has always produced.
type Aggregator struct{}

// Aggregate flattens hypotheses from valid verdicts in order, merges
// matching groups, and returns at most MaxRanked hypotheses sorted by final
// confidence descending. The sort is stable: ties preserve flattening order,
// which itself follows agent registration order. Empty input yields nil,
// never an error.
func (a Aggregator) Aggregate(verdicts []Verdict) []Hypothesis {
	flat := collectValid(verdicts)
	if len(flat) == 0 {
		return nil
	}

	groups := groupByLabel(flat)
	ranked := make([]Hypothesis, 0, len(groups))
	for _, g := range groups {
		ranked = append(ranked, mergeGroup(g))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	if len(ranked) > MaxRanked {
		ranked = ranked[:MaxRanked]
	}
	return ranked
}

// collectValid flattens hypotheses from valid verdicts, preserving order.
func collectValid(verdicts []Verdict) []Hypothesis {
	var out []Hypothesis
	for _, v := range verdicts {
		if v.Valid {
			out = append(out, v.Result.Hypotheses...)
		}
	}
	return out
}

// groupByLabel performs the greedy first-representative grouping.
func groupByLabel(hypotheses []Hypothesis) [][]Hypothesis {
	var groups [][]Hypothesis
	for _, h := range hypotheses {
		placed := false
		for i := range groups {
			if labelsMatch(h.Label, groups[i][0].Label) {
				groups[i] = append(groups[i], h)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []Hypothesis{h})
		}
	}
	return groups
}

// mergeGroup collapses one group into a single hypothesis: the member with
// the highest base confidence, boosted by the agreement bonus, with merged
// agents and signals. The input members are not mutated; a new hypothesis
// is returned.
func mergeGroup(group []Hypothesis) Hypothesis {
	best := group[0]
	for _, h := range group[1:] {
		if h.Confidence > best.Confidence {
			best = h
		}
	}

	bonus := AgreementBonus * float64(len(group)-1)
	final := math.Min(best.Confidence+bonus, 1.0)
	final = math.Round(final*10000) / 10000

	// Sorted deduplicated agent set. Members that are themselves merge
	// products contribute their full agent set.
	agentSet := make(map[string]struct{})
	for _, h := range group {
		if len(h.ContributingAgents) > 0 {
			for _, name := range h.ContributingAgents {
				agentSet[name] = struct{}{}
			}
		} else if h.ContributingAgent != "" {
			agentSet[h.ContributingAgent] = struct{}{}
		}
	}
	agents := make([]string, 0, len(agentSet))
	for name := range agentSet {
		agents = append(agents, name)
	}
	sort.Strings(agents)

	// Union of cited signal IDs, order = first seen across the group.
	seen := make(map[string]struct{})
	var signals []string
	for _, h := range group {
		for _, id := range h.SupportingSignals {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				signals = append(signals, id)
			}
		}
	}

	merged := best
	merged.Confidence = final
	merged.SupportingSignals = signals
	merged.ContributingAgents = agents
	merged.ContributingAgent = strings.Join(agents, ", ")
	return merged
}

// labelsMatch reports whether two labels describe the same root cause:
// case-insensitive, trimmed, either containing the other.
func labelsMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
