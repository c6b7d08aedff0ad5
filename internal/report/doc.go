// Package report accumulates the outcome of one sync run and renders it.
//
// The orchestrator is the only writer of a Report while a run is in flight.
// Render and WriteJSON only read it. Skipped and Inaccessible hold listing
// candidates, Failed and Multipart hold resolved items; an item is never both
// inaccessible and failed.
package report
