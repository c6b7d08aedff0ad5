// Package syncer drives one sync run.
//
// An Orchestrator turns a resolved reference into candidates (a single
// synthetic candidate for a video, a listing call for a collection), applies
// the skip offset, resolves every remaining candidate into an item, then
// acquires items one at a time in listing order. Per-item failures become
// report entries; listing failures and context cancellation end the run and
// return the partial report alongside the error.
//
// Multipart items stop at the first failing part: the remaining parts and the
// item-level assets are not attempted and the item is reported as failed with
// that part's index.
//
// Log lines carry a scope stack pushed with logging.WithScope: "skip",
// "checkout", "download", then "av<aid>" and "P<i>/<n>" inside download.
package syncer
