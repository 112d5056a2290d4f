// Package extract converts a raw incident payload into verified signals.
//
// Four deterministic analyzers each scan one facet of the payload: logs,
// metrics, recent commits, and the config snapshot. No model calls, no
// randomness: the same incident always yields the same signal list.
// The Extractor runs all analyzers with per-analyzer fault isolation and
// assigns the final sequential signal IDs.
package extract
