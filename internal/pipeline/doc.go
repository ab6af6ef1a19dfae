// Package pipeline drives a full analysis run from source scan to delivered
// report. The orchestrator sweeps stale lock tokens, collects candidate
// files, classifies them into analysis categories, hands the resulting units
// to the worker pool, and passes the aggregated outcomes to a sink.
package pipeline
