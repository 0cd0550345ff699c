package work

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// ID identifies a worker within one Handler.
type ID uint64

// worker runs one unit of work on a dedicated goroutine.
type worker struct {
	id      ID
	kind    Kind
	unit    Work
	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool
	done    chan struct{}
	ok      bool
}

func newWorker(ctx context.Context, id ID, unit Work) *worker {
	ctx, cancel := context.WithCancel(ctx)
	return &worker{
		id:     id,
		kind:   unit.Kind(),
		unit:   unit,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// run executes the unit, closes done and then calls finished. done is closed
// before finished is called, so a join never waits for the reaper.
func (w *worker) run(sink Sink, finished func(ID)) {
	defer finished(w.id)
	defer close(w.done)
	defer w.cancel()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(w.ctx, "unit of work panicked",
				"worker_id", w.id,
				"kind", w.kind,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			w.ok = false
		}
	}()

	w.ok = w.unit.Run(w.ctx, sink)
	if !w.ok {
		slog.DebugContext(w.ctx, "unit of work could not start", "worker_id", w.id, "kind", w.kind)
	}
}

// stop asks the unit to return. It does not wait and may be called any
// number of times from any goroutine.
func (w *worker) stop() {
	w.stopped.Store(true)
	w.cancel()
}

// join waits until the worker goroutine has exited.
func (w *worker) join() {
	<-w.done
}

func (w *worker) stopAndJoin() {
	w.stop()
	w.join()
}
