// Package work implements supervision of long running units of work.
//
// Overview
// A Handler owns a registry of workers keyed by a monotonically increasing
// ID. Each worker runs exactly one Work on its own goroutine. Units report
// progress by sending model.Event values to a single Sink shared by every
// worker; the orchestrator is the only consumer of that stream.
//
// Every worker carries a context. Stopping a worker cancels the context, the
// unit notices it at its next blocking point and returns. Joining waits for
// the worker goroutine to exit.
//
// Data flow:
//
//   orchestrator            Handler                 worker{id}
//       |                      |                        |
//   Spawn(unit) -------------->| register, start ------>| go unit.Run(ctx, sink)
//       |<--- id --------------|                        |
//       |<================= events (Sink) ==============|
//       |                      |<------ done(id) -------| unit returned
//       |                      | reaper: unregister     |
//   StopWorker(id) ----------->| unregister, cancel --->| ctx.Done()
//       |                      | join <-----------------| goroutine exits
//
// Invariants:
//   - The registry contains exactly the workers which were spawned and have
//     been neither reaped nor explicitly stopped.
//   - Every worker goroutine notifies the reaper exactly once, whatever the
//     unit returned, also after a panic.
//   - The Handler lock is never held while joining, so the reaper always
//     makes progress.
//   - A cancelled unit never blocks on Sink.Send.
//   - IDs are never reused.
package work
