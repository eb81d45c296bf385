package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeErrorWrapsSentinelAndFormatsDetail(t *testing.T) {
	err := MakeError(ErrUnknownOpCode, "at word %d of %d", 3, 10)

	assert.True(t, stderrors.Is(err, ErrUnknownOpCode))
	assert.Contains(t, err.Error(), "at word 3 of 10")
}

func TestMakeErrorWithNoArgs(t *testing.T) {
	err := MakeError(ErrBadMagic, "plain detail")

	assert.True(t, stderrors.Is(err, ErrBadMagic))
	assert.Contains(t, err.Error(), "plain detail")
}
