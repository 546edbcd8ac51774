// Package config loads, normalizes, and validates assetvault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ASSETVAULT_LIBRARY_DIR
// environment override. Vault, thumbnail, and log directories default to
// subdirectories of the library directory so a single setting relocates a
// whole library.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
