// Package errtrack is the error-tracking sink for best-effort side effects.
// Failures funneled here are recorded and, by contract, never re-raised to
// the operation that produced them.
package errtrack

import (
	"log"
	"sync"
)

// Sink receives collateral failures
type Sink interface {
	Capture(event string, props map[string]interface{})
}

// LogSink writes captures to the standard logger
type LogSink struct{}

// NewLogSink creates a Sink backed by the standard logger
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Capture records an error event
func (s *LogSink) Capture(event string, props map[string]interface{}) {
	log.Printf("[ERROR-TRACK] %s: %v", event, props)
}

// BestEffort runs fn and funnels any failure to sink under the given event
// name. It never returns the error: callers stay on their primary path.
func BestEffort(sink Sink, event string, fn func() error) {
	if err := fn(); err != nil {
		sink.Capture(event, map[string]interface{}{
			"error":   event,
			"message": err.Error(),
		})
	}
}

// MemorySink retains captures in memory. Used in tests.
type MemorySink struct {
	mu       sync.Mutex
	Captures []Capture
}

// Capture is one recorded failure
type Capture struct {
	Event string
	Props map[string]interface{}
}

// NewMemorySink creates an in-memory Sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Capture records an error event
func (s *MemorySink) Capture(event string, props map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Captures = append(s.Captures, Capture{Event: event, Props: props})
}

// Events returns the captured event names in order
func (s *MemorySink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Captures))
	for i, c := range s.Captures {
		out[i] = c.Event
	}
	return out
}
