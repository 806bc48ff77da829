// Package config loads, normalizes, and validates batchren configuration data.
//
// It supplies repository defaults for the rename flags, expands user paths
// (including tilde shortcuts), reads TOML files, and honours environment
// overrides such as BATCHREN_HISTORY_PATH. Command-line flags layer on top of
// the values returned here; the Config type only carries the knobs that make
// sense to persist between runs.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
