// Package main hosts the bget CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration layers, parses the resource
// argument, and wires the bilibili client, acquisition pipeline, head store,
// run history and notifications into a sync run. Everything beyond wiring and
// presentation lives in the internal packages.
package main
