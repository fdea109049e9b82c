// Package config loads, normalizes, and validates papermill configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates every knob the daemon and CLI
// need so staging directories, converter settings, and the API bind address
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
