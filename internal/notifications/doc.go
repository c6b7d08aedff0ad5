// Package notifications pushes run summaries to ntfy.
//
// The service is built from the configured topic URL and degrades to a no-op
// when none is set, so the sync command can notify unconditionally.
package notifications
