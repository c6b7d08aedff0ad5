// Package logging assembles structured slog loggers and formatting helpers used
// across bget.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and derives log fields from the context: the run ID, the item
// being processed, and the scope stack pushed with WithScope. The console
// handler renders scopes as a bracketed prefix ("[download][av170001]") so
// sequential sync output stays readable. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Always log with the *Context methods (InfoContext, WarnContext, ...) inside
// the sync pipeline so scope labels reach the handler.
package logging
