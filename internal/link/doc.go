// Package link sequences network bring-up for the clock: radio association,
// MQTT session establishment and the one-time start of time sync.
//
// State moves forward Disconnected → Associated → SessionUp and never skips
// Associated. Session loss drops SessionUp back to Associated; radio loss
// drops either state to Disconnected. Reassociation is driven by the radio,
// not by this package.
//
// The Orchestrator is not safe for concurrent use. It is driven from the
// controller's event loop.
package link
