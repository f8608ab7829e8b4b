// Package controller owns the clock's runtime state.
//
// A single goroutine (Run) consumes events posted by the collaborators
// (radio watcher, MQTT callbacks, survey runner) and a display tick. The
// connectivity orchestrator, command table and renderer are only touched
// from that goroutine, so none of them need locking. Readers outside the
// loop, such as the HTTP status API, use Snapshot.
//
// Post never blocks: when the queue is full the event is dropped and
// counted.
//
// Telemetry and History are optional sinks for state changes. History
// implementations must not block the loop.
package controller
