package pipeline

import "time"

// EventType classifies agent lifecycle events emitted during a fan-out.
type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventErrored   EventType = "errored"
	// EventRejected marks a completed result the judge refused; emitted by
	// the runtime during validation rather than by the executor.
	EventRejected EventType = "rejected"
)

// Event is one observation from the executor. Elapsed is measured from the
// start of the whole fan-out, not from the individual agent's start, so a
// consumer can reconstruct the timeline of the run.
type Event struct {
	Agent   string
	Type    EventType
	Message string
	Elapsed time.Duration
}

// EventSink receives ordered lifecycle events. Single-method design (like
// http.Handler) so new event types never break existing sinks. A nil sink
// is valid everywhere and turns emission into a no-op.
//
// Sinks are called synchronously from agent goroutines and must not block;
// use ChannelSink to decouple a slow consumer.
type EventSink interface {
	OnEvent(Event)
}

// EventSinkFunc adapts a plain function to the EventSink interface.
type EventSinkFunc func(Event)

func (f EventSinkFunc) OnEvent(e Event) { f(e) }

// ChannelSink forwards events into a bounded channel. When the buffer is
// full the event is dropped rather than blocking, so a slow or absent
// consumer can never stall an agent.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink returns a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	if size <= 0 {
		size = 64
	}
	return &ChannelSink{ch: make(chan Event, size)}
}

func (s *ChannelSink) OnEvent(e Event) {
	select {
	case s.ch <- e:
	default: // consumer is behind; dropping is cheaper than stalling an agent
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Close closes the channel. Call only after the fan-out has completed.
func (s *ChannelSink) Close() { close(s.ch) }
