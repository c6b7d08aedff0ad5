// Package services defines shared utilities consumed by the sync pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, item IDs, and log scope labels so
//     every component tags its log lines the same way.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal run errors and recoverable per-item outcomes.
//
// Use these helpers when wiring new pipeline code so error classification and
// observability stay uniform across commands.
package services
