// Package config loads, normalizes, and validates the TOML configuration
// for the matchvault worker and CLI. Paths support ~ expansion; durations
// are expressed in whole seconds in the file and exposed as time.Duration
// through accessor methods.
package config
