// Package cache implements the durable, content-addressed result stores that
// let independent worker processes skip redundant analysis.
//
// Each analysis category owns one store: a single JSON document mapping
// fingerprints to previously computed values, paired with an adjacent lock
// token. Every read and every write runs as its own locked transaction
// against the full document, so no observer can ever see a half-written
// snapshot, and writers from other processes are merged before a write lands.
// The document is replaced atomically (temp file + rename), never truncated
// in place.
//
// A read-miss followed by a write is deliberately not one atomic unit: two
// processes may both miss on the same fingerprint and compute the value
// twice, with the second write winning. Values for one fingerprint are
// equivalent by contract, so the race costs at most one redundant computation
// and never correctness.
package cache
