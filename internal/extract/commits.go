package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"obelisk/pkg/pipeline"
)

// Diff patterns that suggest a cache was removed.
var cacheRemovalPatterns = compileAll(
	`(?i)removed?\s+@?cache`,
	`(?i)cache\s+decorator\s+removed`,
	`(?i)cache\s*=\s*false`,
	`(?i)no.?cache`,
	`(?i)disable[d]?\s+cach`,
	`(?i)CACHE_TTL\s*=\s*0`,
)

// Diff patterns that suggest a potentially unindexed query was added.
var unindexedQueryPatterns = compileAll(
	`(?i)SELECT\s+\*\s+FROM\s+\w+\s+JOIN`,
	`(?i)without\s+index`,
	`(?i)no\s+index\s+hint`,
	`(?i)full\s+table\s+scan`,
)

// Diff patterns that suggest the DB pool size was changed; capture groups
// hold the before/after values.
var poolChangePatterns = compileAll(
	`(?i)MAX_DB_CONNECTIONS\s+from\s+(\d+)\s+to\s+(\d+)`,
	`(?i)pool_size\s+from\s+(\d+)\s+to\s+(\d+)`,
	`(?i)MAX_CONNECTIONS\s+from\s+(\d+)\s+to\s+(\d+)`,
	`(?i)DB_POOL_SIZE\s+from\s+(\d+)\s+to\s+(\d+)`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// CommitAnalyzer scans commit messages and diff summaries for high-risk
// change patterns: cache removal, unindexed queries, pool-size reductions.
type CommitAnalyzer struct{}

func (CommitAnalyzer) Name() string { return "commit_analyzer" }

func (a CommitAnalyzer) Analyze(incident pipeline.Incident) []pipeline.Signal {
	var signals []pipeline.Signal
	for _, c := range incident.RecentCommits {
		sha := c.SHA
		if sha == "" {
			sha = "unknown"
		}
		diff := c.DiffSummary + " " + c.Message

		signals = append(signals, a.checkCacheRemoval(diff, sha)...)
		signals = append(signals, a.checkUnindexedQuery(diff, sha)...)
		signals = append(signals, a.checkPoolReduction(diff, sha)...)
	}
	return signals
}

func (a CommitAnalyzer) checkCacheRemoval(diff, sha string) []pipeline.Signal {
	for _, re := range cacheRemovalPatterns {
		if re.MatchString(diff) {
			return []pipeline.Signal{{
				Type:        "commit_change",
				Description: fmt.Sprintf("Cache decorator removed in commit %s", sha),
				Severity:    pipeline.SeverityMedium,
				Source:      a.Name(),
			}}
		}
	}
	return nil
}

func (a CommitAnalyzer) checkUnindexedQuery(diff, sha string) []pipeline.Signal {
	for _, re := range unindexedQueryPatterns {
		if re.MatchString(diff) {
			return []pipeline.Signal{{
				Type:        "commit_change",
				Description: fmt.Sprintf("Potentially unindexed query added in commit %s", sha),
				Severity:    pipeline.SeverityMedium,
				Source:      a.Name(),
			}}
		}
	}
	return nil
}

func (a CommitAnalyzer) checkPoolReduction(diff, sha string) []pipeline.Signal {
	for _, re := range poolChangePatterns {
		match := re.FindStringSubmatch(diff)
		if match == nil {
			continue
		}
		before, err1 := strconv.Atoi(match[1])
		after, err2 := strconv.Atoi(match[2])
		if err1 == nil && err2 == nil && after < before {
			return []pipeline.Signal{{
				Type: "commit_change",
				Description: fmt.Sprintf("DB connection pool reduced from %d to %d in commit %s",
					before, after, sha),
				Value:    pipeline.Float(float64(after)),
				Severity: pipeline.SeverityHigh,
				Source:   a.Name(),
			}}
		}
		// Pattern matched but the numbers are not a reduction; still worth
		// surfacing as a change.
		return []pipeline.Signal{{
			Type:        "commit_change",
			Description: fmt.Sprintf("DB connection pool size changed in commit %s", sha),
			Severity:    pipeline.SeverityMedium,
			Source:      a.Name(),
		}}
	}
	return nil
}
