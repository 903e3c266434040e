// Package controller implements the form controller: the state machine that
// owns the selected form type, the editing buffer, per-field errors, progress
// and the submission store.
//
// Every transition is applied atomically under a single lock, and Snapshot
// returns a consistent copy of the whole state. Callers that prefer message
// passing run Loop on one goroutine and send commands through Dispatch; the
// loop applies them in arrival order.
package controller
