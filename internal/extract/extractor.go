package extract

import (
	"fmt"
	"log/slog"

	"obelisk/pkg/pipeline"
)

// Analyzer is one deterministic signal source. Implementations must not
// assign IDs; the Extractor owns the global sequence so each analyzer can
// be tested in isolation without knowing its position in it.
type Analyzer interface {
	Name() string
	Analyze(incident pipeline.Incident) []pipeline.Signal
}

// Extractor orchestrates all analyzers into one stable, ID-assigned signal
// list. Each analyzer runs in isolation: if one panics, the failure is
// logged and extraction continues. Partial signals beat no signals.
type Extractor struct {
	analyzers []Analyzer
	log       *slog.Logger
}

// New returns an extractor over the given analyzers. With none given it
// uses the default four: logs, metrics, commits, config.
func New(log *slog.Logger, analyzers ...Analyzer) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	if len(analyzers) == 0 {
		analyzers = []Analyzer{LogAnalyzer{}, MetricsAnalyzer{}, CommitAnalyzer{}, ConfigAnalyzer{}}
	}
	return &Extractor{analyzers: analyzers, log: log}
}

// Extract implements pipeline.Extractor. Signal IDs are assigned
// sequentially (sig_001, sig_002, ...) after every analyzer has run.
func (e *Extractor) Extract(incident pipeline.Incident) []pipeline.Signal {
	var raw []pipeline.Signal
	for _, a := range e.analyzers {
		raw = append(raw, e.runSafely(a, incident)...)
	}

	for i := range raw {
		raw[i].ID = fmt.Sprintf("sig_%03d", i+1)
	}

	e.log.Debug("extraction produced signals", "count", len(raw))
	return raw
}

func (e *Extractor) runSafely(a Analyzer, incident pipeline.Incident) (signals []pipeline.Signal) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("analyzer failed, skipping", "analyzer", a.Name(), "error", r)
			signals = nil
		}
	}()
	return a.Analyze(incident)
}
