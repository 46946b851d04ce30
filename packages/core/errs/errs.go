package errs

import (
	"errors"
	"fmt"
)

// Kind identifies a failure category. The set is closed: callers can switch
// over every value.
type Kind int

const (
	UnsupportedScheme Kind = iota + 1
	MalformedStatusLine
	InvalidStatusCode
	MalformedHeader
	MissingBodySeparator
	InvalidEncoding

	NetworkUnavailable
	NoAddressFound
	ConnectFailed
	SendFailed
	ReceiveFailed
)

func (k Kind) String() string {
	switch k {
	case UnsupportedScheme:
		return "unsupported scheme"
	case MalformedStatusLine:
		return "malformed status line"
	case InvalidStatusCode:
		return "invalid status code"
	case MalformedHeader:
		return "malformed header"
	case MissingBodySeparator:
		return "missing body separator"
	case InvalidEncoding:
		return "invalid encoding"
	case NetworkUnavailable:
		return "network unavailable"
	case NoAddressFound:
		return "no address found"
	case ConnectFailed:
		return "connect failed"
	case SendFailed:
		return "send failed"
	case ReceiveFailed:
		return "receive failed"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error lets a Kind be used as a target for errors.Is.
func (k Kind) Error() string {
	return k.String()
}

// IsTransport reports whether k belongs to the connection error class.
func (k Kind) IsTransport() bool {
	return k >= NetworkUnavailable && k <= ReceiveFailed
}

// ValidationError is returned by the parsers. Input holds the offending line
// or substring.
type ValidationError struct {
	Kind  Kind
	Input string
	Line  int // 1-based line number, 0 when not line oriented
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %q", e.Kind, e.Line, e.Input)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Input)
}

func (e *ValidationError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// TransportError wraps a network failure while talking to Addr.
type TransportError struct {
	Kind Kind
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	msg := e.Kind.String()
	if e.Addr != "" {
		msg += " (" + e.Addr + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Validation builds a ValidationError.
func Validation(kind Kind, input string, line int) *ValidationError {
	return &ValidationError{Kind: kind, Input: input, Line: line}
}

// Transport builds a TransportError.
func Transport(kind Kind, addr string, err error) *TransportError {
	return &TransportError{Kind: kind, Addr: addr, Err: err}
}

// KindOf returns the Kind carried anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
