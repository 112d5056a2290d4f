package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"obelisk/pkg/pipeline"
)

// Config key fragments that suggest a capacity or rate limit.
var limitKeywords = regexp.MustCompile(`(?i)(max|limit|pool|size|connections|workers|threads|concurren|rate|ttl|timeout)`)

// ConfigAnalyzer extracts signals from the config snapshot: numeric limits
// reduced against a known-good baseline, and feature flags newly enabled.
// With no baseline it falls back to heuristics and flags limit-named keys
// with suspiciously low values.
type ConfigAnalyzer struct {
	// Baseline is an optional known-good snapshot to diff against.
	Baseline map[string]any
}

func (ConfigAnalyzer) Name() string { return "config_analyzer" }

func (a ConfigAnalyzer) Analyze(incident pipeline.Incident) []pipeline.Signal {
	cfg := incident.ConfigSnapshot
	if len(cfg) == 0 {
		return nil
	}

	var signals []pipeline.Signal
	signals = append(signals, a.checkNumericLimits(cfg)...)
	signals = append(signals, a.checkFeatureFlags(cfg)...)
	return signals
}

func (a ConfigAnalyzer) checkNumericLimits(cfg map[string]any) []pipeline.Signal {
	var signals []pipeline.Signal
	for _, key := range sortedKeys(cfg) {
		value, ok := asNumber(cfg[key])
		if !ok || !limitKeywords.MatchString(key) {
			continue
		}

		if a.Baseline != nil {
			base, ok := asNumber(a.Baseline[key])
			if !ok || value >= base {
				continue
			}
			severity := pipeline.SeverityMedium
			if base > 0 && value/base < 0.5 {
				severity = pipeline.SeverityHigh
			}
			signals = append(signals, pipeline.Signal{
				Type:        "config_change",
				Description: fmt.Sprintf("Config %q reduced from %v to %v", key, trimFloat(base), trimFloat(value)),
				Value:       pipeline.Float(value),
				Severity:    severity,
				Source:      a.Name(),
			})
			continue
		}

		// Heuristic path: flag suspiciously low values on limit-named keys.
		lowConnection := value <= 5 && strings.Contains(strings.ToLower(key), "connection")
		if value == 0 || lowConnection {
			signals = append(signals, pipeline.Signal{
				Type: "config_change",
				Description: fmt.Sprintf("Config %q is set to %v - unusually low for a limit/capacity setting",
					key, trimFloat(value)),
				Value:    pipeline.Float(value),
				Severity: pipeline.SeverityMedium,
				Source:   a.Name(),
			})
		}
	}
	return signals
}

func (a ConfigAnalyzer) checkFeatureFlags(cfg map[string]any) []pipeline.Signal {
	flags, ok := cfg["FEATURE_FLAGS"].(map[string]any)
	if !ok {
		return nil
	}
	baselineFlags, _ := a.Baseline["FEATURE_FLAGS"].(map[string]any)

	var signals []pipeline.Signal
	for _, flag := range sortedKeys(flags) {
		enabled, _ := flags[flag].(bool)
		if !enabled {
			continue
		}
		wasEnabled, _ := baselineFlags[flag].(bool)
		if !wasEnabled {
			signals = append(signals, pipeline.Signal{
				Type:        "config_change",
				Description: fmt.Sprintf("Feature flag %q newly enabled", flag),
				Severity:    pipeline.SeverityMedium,
				Source:      a.Name(),
			})
		}
	}
	return signals
}

// asNumber accepts the numeric types a decoded JSON/YAML snapshot can carry.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// trimFloat renders whole numbers without a trailing ".0".
func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
