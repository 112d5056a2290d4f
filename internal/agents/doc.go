// Package agents provides the built-in investigation agents. Each agent
// reads the shared signal snapshot through its own lens (logs, metrics,
// commits, config) and proposes root-cause hypotheses grounded in the
// signals it cites. All built-ins are deterministic rule engines, which
// keeps pipeline runs reproducible end to end.
package agents
