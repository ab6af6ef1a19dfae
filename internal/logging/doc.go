// Package logging assembles the structured slog loggers and formatting
// helpers used across curator.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes context-aware helpers so worker code automatically tags log lines
// with unit paths, categories, worker IDs, and correlation IDs. A no-op
// logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
