package buserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultCodeClassifiesSentinels(t *testing.T) {
	assert.Equal(t, KindCodec, ResultCode(ErrTooDeeplyNested))
	assert.Equal(t, KindFraming, ResultCode(ErrTrailingData))
	assert.Equal(t, KindProtocol, ResultCode(ErrInvalidService))
	assert.Equal(t, KindClientLocal, ResultCode(ErrClientShutdown))
	assert.Equal(t, KindUnspecified, ResultCode(errors.New("unrelated")))
}

func TestProtocolErrorWrapAndUnwrap(t *testing.T) {
	wrapped := Wrap(ErrInvalidObject, KindProtocol, "cookie 1234 unknown")
	assert.ErrorIs(t, wrapped, ErrInvalidObject)
	assert.Equal(t, KindProtocol, ResultCode(wrapped))
	assert.Contains(t, wrapped.Error(), "cookie 1234 unknown")
}
