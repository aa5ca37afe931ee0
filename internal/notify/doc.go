// Package notify implements the transient notification (toast) manager.
//
// A Manager renders short-lived status messages onto a Surface and removes
// each one after its duration, or earlier when the caller dismisses it.
// Removal is idempotent: the auto-expiry timer and a manual Dismiss may race,
// and whichever comes second is a no-op.
//
// A Manager without a Surface accepts Notify calls and does nothing, so
// callers never depend on notifications being visible.
package notify
