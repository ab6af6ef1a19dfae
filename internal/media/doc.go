// Package media defines the domain model shared by the cache, the worker
// pool, and the pipeline: analysis categories, units of work, and the
// per-category result shapes.
//
// A Unit pairs a file path with the category of analysis it requires. Units
// are ephemeral; they exist only for the duration of a single run and are
// never persisted. Result is the tagged variant that carries the value a
// worker produced (or retrieved from cache) for one unit.
package media
