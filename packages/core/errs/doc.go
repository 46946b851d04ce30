// Package errs defines the failure taxonomy shared by hitget's parsers and
// transport.
//
// Parser failures are *ValidationError values, connection failures are
// *TransportError values. Both carry a Kind, so callers can write:
//
//	if errors.Is(err, errs.MissingBodySeparator) { ... }
//	kind, ok := errs.KindOf(err)
package errs
