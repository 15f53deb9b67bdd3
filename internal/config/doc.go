// Package config loads, normalizes, and validates the TOML configuration
// file controlling the backend connection, cache behavior, local preferences
// storage, and logging.
package config
