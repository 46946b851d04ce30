// Package output provides formatters for displaying fetch results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output, one document per call
//
// Both formatters render exchanges, parsed URLs and responses, history
// entries and errors. Errors carrying a kind report it.
package output
