package pipeline

import "sync"

// Memory is the append-only evidence store for one invocation. It is created
// at the start of Execute, populated by the extractor before any agent runs,
// read concurrently during dispatch, and discarded when Execute returns.
//
// There is deliberately no delete or update: append-only semantics let
// concurrent readers observe a stable snapshot, and let the judge trust that
// a signal ID present at validation time was present when agents ran.
type Memory struct {
	mu      sync.RWMutex
	signals []Signal
}

// NewMemory returns an empty evidence store.
func NewMemory() *Memory {
	return &Memory{}
}

// AddSignal appends one signal.
func (m *Memory) AddSignal(s Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, s)
}

// AddSignals appends multiple signals in one call. An empty slice is fine.
func (m *Memory) AddSignals(signals []Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, signals...)
}

// Signals returns a copy of all signals added so far.
func (m *Memory) Signals() []Signal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Signal, len(m.signals))
	copy(out, m.signals)
	return out
}

// SignalIDs returns the set of known signal IDs. The judge uses it for O(1)
// cross-referencing of cited evidence.
func (m *Memory) SignalIDs() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]struct{}, len(m.signals))
	for _, s := range m.signals {
		ids[s.ID] = struct{}{}
	}
	return ids
}

// Len returns the number of stored signals.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.signals)
}
