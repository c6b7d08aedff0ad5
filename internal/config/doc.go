// Package config loads, layers, normalizes, and validates bget configuration.
//
// Effective settings are built in a fixed order: repository defaults, the
// global table of the TOML config file, an optional [section.<name>] table,
// and finally command-line overrides. Each layer only touches the fields it
// actually sets; the switches collection is edited with set algebra rather
// than replaced wholesale by sections and flags.
//
// Always obtain settings through Resolve so downstream code receives expanded
// paths, a de-duplicated switch set, and clear validation errors.
package config
