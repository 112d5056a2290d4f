package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"obelisk/pkg/pipeline"
)

const (
	// errorRateThreshold: emit a signal when more than 10% of lines are errors.
	errorRateThreshold = 0.10
	// errorRateBaseline is assumed when the payload carries no baseline.
	errorRateBaseline = 0.01
	// dominantErrorMinCount: a prefix needs at least this many hits to count
	// as the dominant error.
	dominantErrorMinCount = 3
)

var (
	levelTagRe = regexp.MustCompile(`^(ERROR|WARN|INFO)\s+`)
	numberRe   = regexp.MustCompile(`\b\d+\b`)
)

// LogAnalyzer extracts signals from raw log lines: error-rate spikes, the
// dominant error type, and error signatures that first appear after the
// deploy window opens.
type LogAnalyzer struct{}

func (LogAnalyzer) Name() string { return "log_analyzer" }

func (a LogAnalyzer) Analyze(incident pipeline.Incident) []pipeline.Signal {
	logs := incident.Logs
	if len(logs) == 0 {
		return nil
	}

	var signals []pipeline.Signal
	total := len(logs)

	var errorLines []string
	for _, line := range logs {
		if strings.HasPrefix(line, "ERROR") {
			errorLines = append(errorLines, line)
		}
	}
	errorRate := float64(len(errorLines)) / float64(total)

	if errorRate > errorRateThreshold {
		ratio := roundTo(errorRate/errorRateBaseline, 1)
		severity := pipeline.SeverityMedium
		if ratio >= 2 {
			severity = pipeline.SeverityHigh
		}
		signals = append(signals, pipeline.Signal{
			Type: "log_anomaly",
			Description: fmt.Sprintf("Error rate is %.0f%% - %.1fx above baseline of %.0f%%",
				errorRate*100, ratio, errorRateBaseline*100),
			Value:    pipeline.Float(ratio),
			Severity: severity,
			Source:   a.Name(),
		})
	}

	if len(errorLines) > 0 {
		prefix, count := dominantPrefix(errorLines)
		if count >= dominantErrorMinCount {
			share := float64(count) / float64(total)
			severity := pipeline.SeverityMedium
			if share > 0.15 {
				severity = pipeline.SeverityHigh
			}
			signals = append(signals, pipeline.Signal{
				Type: "log_anomaly",
				Description: fmt.Sprintf("Dominant error: %q (%d occurrences, %.0f%% of all logs)",
					prefix, count, share*100),
				Value:    pipeline.Float(float64(count)),
				Severity: severity,
				Source:   a.Name(),
			})
		}
	}

	// New error signatures: patterns present in the last 80% of the log
	// window but absent from the first 20%.
	split := total / 5
	if split < 1 {
		split = 1
	}
	early := prefixSet(logs[:split])
	late := prefixSet(logs[split:])
	var fresh []string
	for sig := range late {
		if _, seen := early[sig]; !seen {
			fresh = append(fresh, sig)
		}
	}
	sort.Strings(fresh)
	for _, sig := range fresh {
		signals = append(signals, pipeline.Signal{
			Type:        "log_anomaly",
			Description: fmt.Sprintf("New error pattern appeared after deploy: %q", sig),
			Severity:    pipeline.SeverityMedium,
			Source:      a.Name(),
		})
	}

	return signals
}

// errorPrefix normalizes a log line into a short bucket key: the level tag
// and all numbers are stripped so lines differing only in durations or
// counts hash to the same error type.
func errorPrefix(line string) string {
	line = levelTagRe.ReplaceAllString(line, "")
	line = numberRe.ReplaceAllString(line, "N")
	if len(line) > 60 {
		line = line[:60]
	}
	return strings.TrimSpace(line)
}

func dominantPrefix(errorLines []string) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, line := range errorLines {
		p := errorPrefix(line)
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}
	best, bestCount := "", 0
	for _, p := range order { // first-seen wins ties
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best, bestCount
}

func prefixSet(lines []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range lines {
		if strings.HasPrefix(line, "ERROR") {
			set[errorPrefix(line)] = struct{}{}
		}
	}
	return set
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
