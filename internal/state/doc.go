// Package state tracks the synchronization status of one aggregate.
//
// # Overview
//
// Each synchronization controller owns a Store and marks every refresh or
// mutation cycle with Begin and Finish. The UI reads Snapshot on its own
// schedule to render a status line:
//
//	Controller:                 UI:
//	┌──────────────────┐       ┌──────────────────┐
//	│ store.Begin(op)  │       │                  │
//	│ network calls... │       │ store.Snapshot() │
//	│ store.Finish(op) │──────→│ render status    │
//	└──────────────────┘ mutex └──────────────────┘
//
// # Update Semantics
//
//	store.Finish(op, nil)
//	→ Loading = false, LastError = nil
//	→ LastUpdated = LastSuccess = now
//	→ ConsecutiveFailures = 0
//
//	store.Finish(op, err)
//	→ Loading = false, LastError = err
//	→ LastUpdated = now, LastSuccess unchanged
//	→ ConsecutiveFailures++
//
//	store.Abandon(op)
//	→ Loading = false, everything else unchanged
//
// The Loading flag is advisory and Begin never blocks; ordering between
// cycles is the controller's job.
//
// # Defensive Copying
//
// Snapshot returns the status by value and wraps LastError in a fresh error
// value, so the UI never shares mutable state with the controller.
//
// The zero Store is ready to use.
package state
