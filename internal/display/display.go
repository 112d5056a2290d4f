// Package display renders agent lifecycle events as styled terminal
// lines while a pipeline run is in flight. Rendering is line oriented
// rather than a full-screen redraw so output stays readable when piped
// to a file or CI log.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"obelisk/internal/format"
	"obelisk/pkg/pipeline"
)

var (
	agentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	startedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// marks for each event type, mirrored in plain mode without color.
const (
	markStarted   = "…"
	markCompleted = "✓"
	markErrored   = "✗"
	markRejected  = "⚠"
)

// Tracker writes one line per agent lifecycle event. It implements
// pipeline.EventSink, so it can be handed directly to Runtime.Execute,
// and it is safe for concurrent emission from agent goroutines.
type Tracker struct {
	mu    sync.Mutex
	w     io.Writer
	plain bool
}

// NewTracker writes styled lines to w. Set plain to strip ANSI styling,
// for dumb terminals and log files.
func NewTracker(w io.Writer, plain bool) *Tracker {
	return &Tracker{w: w, plain: plain}
}

func (t *Tracker) OnEvent(e pipeline.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, t.line(e))
}

// Consume drains the channel until it is closed, rendering every event.
// It blocks, so run it on its own goroutine alongside the pipeline.
func (t *Tracker) Consume(events <-chan pipeline.Event) {
	for e := range events {
		t.OnEvent(e)
	}
}

func (t *Tracker) line(e pipeline.Event) string {
	mark, style := markFor(e.Type)
	elapsed := fmt.Sprintf("[%7s]", format.FmtDuration(e.Elapsed))
	if t.plain {
		return fmt.Sprintf("%s %s %-16s %s", elapsed, mark, e.Agent, e.Message)
	}
	return fmt.Sprintf("%s %s %s %s",
		elapsedStyle.Render(elapsed),
		style.Render(mark),
		agentStyle.Render(fmt.Sprintf("%-16s", e.Agent)),
		e.Message)
}

func markFor(t pipeline.EventType) (string, lipgloss.Style) {
	switch t {
	case pipeline.EventCompleted:
		return markCompleted, successStyle
	case pipeline.EventErrored:
		return markErrored, errorStyle
	case pipeline.EventRejected:
		return markRejected, warnStyle
	default:
		return markStarted, startedStyle
	}
}
