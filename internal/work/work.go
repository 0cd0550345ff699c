package work

import (
	"context"

	"github.com/plx-project/plx/internal/model"
)

// Work is a unit of long running activity executed by a worker.
//
// Run must return promptly once ctx is done. It returns false only when the
// unit could not even begin, after sending an event explaining why. Failures
// during the run (compile errors, failed checks) are reported as events and
// Run returns true. Cancellation is not a failure.
type Work interface {
	Run(ctx context.Context, events Sink) bool
	Kind() Kind
}

// Sink is the sending half of the event stream shared by all workers.
type Sink struct {
	ch chan<- model.Event
}

// NewSink returns a Sink delivering to ch.
func NewSink(ch chan<- model.Event) Sink {
	return Sink{ch: ch}
}

// Send delivers ev unless ctx is done first. It reports whether ev was
// delivered. Events of one sender keep their order.
func (s Sink) Send(ctx context.Context, ev model.Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
