// Package logs reads the bget log file for `bget logs`.
//
// Last returns the trailing lines with bounded memory; Follow streams lines
// appended after an offset until its context ends. Both accept a Match
// predicate so callers can narrow output to one run.
package logs
