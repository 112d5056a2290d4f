// Package pipeline is the orchestration core of Obelisk.
//
// It turns a set of independent, possibly-slow, possibly-failing analysis
// agents into one ranked, validated hypothesis list. The package owns four
// guarantees:
//
//   - Fault isolation: a panicking, erroring, or slow agent never corrupts
//     or stalls the results of its siblings.
//   - Grounding: no hypothesis reaches the output unless every signal ID it
//     cites exists in the invocation's evidence memory.
//   - Determinism downstream of agents: the judge and aggregator are pure
//     functions of their inputs, so rejections and rankings are reproducible
//     without re-running any agent.
//   - Termination: Execute always returns a well-formed result. Failures
//     degrade toward an empty ranking plus a forced human-review flag.
//
// Everything non-deterministic or external (agent reasoning, signal
// extraction heuristics, narrative synthesis, transports) lives behind the
// Agent, Extractor, Synthesizer, and EventSink interfaces.
package pipeline
