// Package pool runs units of work across a fixed set of parallel workers
// that share nothing but the cache stores.
//
// Each worker builds its own heavyweight collaborator resources exactly once
// (model handles, LLM clients) and keeps them private for its lifetime;
// isolation is the point, because the only cross-worker coordination allowed
// is the locked cache transaction. Per unit, a worker fingerprints the input,
// consults the category store, computes on a miss, and writes the result
// back. A unit's failure — unreadable file, collaborator error, even a panic —
// becomes a failure outcome for that unit alone and never stops the pool.
package pool
