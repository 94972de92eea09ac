// Package config loads, normalizes, and validates romdex configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives scan parallelism from the host
// when unset. The Config type centralizes every knob the CLI and pipeline
// need: scan roots, database location, batching thresholds, memory
// watermarks, and one-game-one-rom priorities.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
