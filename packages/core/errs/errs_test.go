package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "unsupported scheme", UnsupportedScheme.String())
	assert.Equal(t, "receive failed", ReceiveFailed.String())
	assert.Contains(t, Kind(99).String(), "unknown")
}

func TestKindIsTransport(t *testing.T) {
	for _, k := range []Kind{UnsupportedScheme, MalformedStatusLine, InvalidStatusCode, MalformedHeader, MissingBodySeparator, InvalidEncoding} {
		assert.False(t, k.IsTransport(), k.String())
	}
	for _, k := range []Kind{NetworkUnavailable, NoAddressFound, ConnectFailed, SendFailed, ReceiveFailed} {
		assert.True(t, k.IsTransport(), k.String())
	}
}

func TestValidationError(t *testing.T) {
	err := Validation(MalformedHeader, "garbage", 3)

	assert.Equal(t, `malformed header at line 3: "garbage"`, err.Error())
	assert.True(t, errors.Is(err, MalformedHeader))
	assert.False(t, errors.Is(err, MissingBodySeparator))

	wrapped := fmt.Errorf("fetch: %w", err)
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, MalformedHeader, kind)
}

func TestValidationErrorWithoutLine(t *testing.T) {
	err := Validation(UnsupportedScheme, "ftp://x", 0)
	assert.Equal(t, `unsupported scheme: "ftp://x"`, err.Error())
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(ConnectFailed, "127.0.0.1:80", cause)

	assert.Equal(t, "connect failed (127.0.0.1:80): connection refused", err.Error())
	assert.True(t, errors.Is(err, ConnectFailed))
	assert.True(t, errors.Is(err, cause))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, ConnectFailed, kind)
}

func TestKindOfForeignError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}
