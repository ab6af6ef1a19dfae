// Package config loads, normalizes, and validates curator's TOML
// configuration. Load merges an optional config file over repository
// defaults, expands every path field, and rejects unusable values so the
// rest of the system can trust the struct it receives.
package config
