// Package cmd implements the hitget CLI commands using Cobra.
//
// Available commands:
//   - get: Fetch a URL and print the response, optionally checking it
//   - parse url: Decompose a URL without fetching it
//   - parse response: Parse a saved raw response
//   - bench: Repeat a GET and report latency percentiles
//   - history: List, show or clear recorded fetches
//   - watch: Re-fetch the URLs listed in a file whenever it changes
//   - init: Write a starter config file
//   - version: Show hitget version information
//
// Exit codes distinguish failed checks, parse errors, configuration errors
// and network errors.
package cmd
