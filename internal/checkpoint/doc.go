// Package checkpoint persists per-section "head" boundaries: the unix time of
// the last successful sync of each configured favourites section.
//
// A Store reads the boundary at run start, captures the run's own start time
// with Tick, and writes that value back with Write once orchestration has
// finished. Writes are a whole-file read-modify-write under an advisory file
// lock and land through an atomic rename, so an interrupted run leaves the
// previous file intact.
//
// The on-disk format follows the file extension: ".toml" files are TOML and
// everything else is indented JSON. Values may be integers or ISO-8601
// timestamps; each entry keeps its representation when rewritten.
package checkpoint
