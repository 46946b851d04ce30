package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
)

// Exit codes for hitget CLI
const (
	// ExitSuccess indicates the fetch succeeded and all checks passed
	ExitSuccess = 0

	// ExitCheckFailure indicates one or more checks or thresholds failed
	ExitCheckFailure = 1

	// ExitParseError indicates a URL or response could not be parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

var errChecksFailed = errors.New("checks failed")

// reportedError marks an error the formatter already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// configError marks a failure to load or validate configuration
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// usageError marks invalid flag values
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errChecksFailed) {
		return ExitCheckFailure
	}

	var ce *configError
	if errors.As(err, &ce) {
		return ExitConfigError
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsageError
	}

	if kind, ok := errs.KindOf(err); ok {
		if kind.IsTransport() {
			return ExitNetworkError
		}
		return ExitParseError
	}
	return ExitCheckFailure
}
