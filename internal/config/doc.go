// Package config loads, validates, and normalizes ytscribe configuration
// from a TOML file, with sane defaults when no file exists.
package config
