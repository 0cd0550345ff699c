package work

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/plx-project/plx/internal/model"
)

var ErrClosed = errors.New("work handler closed")

// Info is a snapshot of one registered worker.
type Info struct {
	ID      ID
	Kind    Kind
	Stopped bool
}

// Handler spawns workers, tracks the running ones and stops them on request.
// All methods are safe for concurrent use.
type Handler struct {
	ctx    context.Context
	sink   Sink
	mx     sync.Mutex
	nextID ID
	closed bool
	// workers holds spawned workers which have been neither reaped nor stopped
	workers map[ID]*worker
	wg      sync.WaitGroup
	reap    chan ID
	quit    chan struct{}
	reaped  chan struct{}
}

// New returns a Handler whose workers send events to events. Values of ctx
// (log attributes) are inherited by workers, its cancellation is not: workers
// stop only when asked to or on Close.
func New(ctx context.Context, events chan<- model.Event) *Handler {
	h := &Handler{
		ctx:     context.WithoutCancel(ctx),
		sink:    NewSink(events),
		nextID:  1,
		workers: make(map[ID]*worker),
		reap:    make(chan ID),
		quit:    make(chan struct{}),
		reaped:  make(chan struct{}),
	}
	go h.reaper()
	return h
}

// Spawn registers unit and starts it on a new goroutine. It returns at once.
func (h *Handler) Spawn(unit Work) (ID, error) {
	return h.SpawnContext(h.ctx, unit)
}

// SpawnContext is like Spawn, the unit's context inherits values of ctx.
func (h *Handler) SpawnContext(ctx context.Context, unit Work) (ID, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if h.closed {
		return 0, ErrClosed
	}

	id := h.nextID
	h.nextID++
	w := newWorker(context.WithoutCancel(ctx), id, unit)
	h.workers[id] = w
	h.wg.Go(func() {
		w.run(h.sink, h.finished)
	})
	slog.DebugContext(ctx, "worker spawned", "worker_id", id, "kind", w.kind)
	return id, nil
}

// StopWorker stops the worker id and waits until it has exited. Unknown or
// already finished workers are ignored.
func (h *Handler) StopWorker(id ID) {
	stopAndJoin(h.take(func(w *worker) bool { return w.id == id }))
}

// StopWorkers stops every worker of kind and waits until all of them have
// exited. All of them are signalled before the first one is joined.
func (h *Handler) StopWorkers(kind Kind) {
	stopAndJoin(h.take(func(w *worker) bool { return w.kind == kind }))
}

// SignalWorkers asks every worker of kind to stop and returns without waiting.
// The workers leave the registry at once, Close still waits for them.
func (h *Handler) SignalWorkers(kind Kind) {
	for _, w := range h.take(func(w *worker) bool { return w.kind == kind }) {
		w.stop()
	}
}

// StopAllWorkersAndWait stops every worker and waits until all have exited.
func (h *Handler) StopAllWorkersAndWait() {
	stopAndJoin(h.take(func(*worker) bool { return true }))
}

// CleanNonProtectedWorkers stops and joins every worker not of kind protected.
func (h *Handler) CleanNonProtectedWorkers(protected Kind) {
	stopAndJoin(h.take(func(w *worker) bool { return w.kind != protected }))
}

// Workers returns the registered workers ordered by ID.
func (h *Handler) Workers() []Info {
	h.mx.Lock()
	defer h.mx.Unlock()
	ret := make([]Info, 0, len(h.workers))
	for _, id := range slices.Sorted(maps.Keys(h.workers)) {
		w := h.workers[id]
		ret = append(ret, Info{ID: w.id, Kind: w.kind, Stopped: w.stopped.Load()})
	}
	return ret
}

// Len returns the number of registered workers.
func (h *Handler) Len() int {
	h.mx.Lock()
	defer h.mx.Unlock()
	return len(h.workers)
}

// Close stops all workers, waits for every worker goroutine including the
// signalled ones and shuts the reaper down. Spawn fails with ErrClosed
// afterwards. Close is idempotent.
func (h *Handler) Close() {
	h.mx.Lock()
	if h.closed {
		h.mx.Unlock()
		<-h.reaped
		return
	}
	h.closed = true
	h.mx.Unlock()

	h.StopAllWorkersAndWait()
	h.wg.Wait()
	close(h.quit)
	<-h.reaped
	slog.DebugContext(h.ctx, "work handler closed")
}

// take removes the matching workers from the registry and returns them.
func (h *Handler) take(match func(*worker) bool) []*worker {
	h.mx.Lock()
	defer h.mx.Unlock()
	var ret []*worker
	for id, w := range h.workers {
		if match(w) {
			delete(h.workers, id)
			ret = append(ret, w)
		}
	}
	return ret
}

func stopAndJoin(workers []*worker) {
	for _, w := range workers {
		w.stop()
	}
	for _, w := range workers {
		w.join()
		slog.DebugContext(w.ctx, "worker stopped", "worker_id", w.id, "kind", w.kind)
	}
}

// finished is called by every worker goroutine once its unit has returned.
func (h *Handler) finished(id ID) {
	select {
	case h.reap <- id:
	case <-h.quit:
	}
}

func (h *Handler) reaper() {
	defer close(h.reaped)
	for {
		select {
		case id := <-h.reap:
			h.remove(id)
		case <-h.quit:
			return
		}
	}
}

func (h *Handler) remove(id ID) {
	h.mx.Lock()
	defer h.mx.Unlock()
	w, ok := h.workers[id]
	if !ok {
		return
	}
	delete(h.workers, id)
	slog.DebugContext(w.ctx, "worker reaped", "worker_id", id, "kind", w.kind, "ok", w.ok)
}
