// Package config handles configuration loading and management for hitget.
//
// It provides functionality for:
//   - Loading configuration from .hitget.yaml or hitget.json files
//   - Default configuration values
//   - Merging command line overrides over file values
package config
