package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "postprocess", "transcode", cause)

	assert.True(t, Is(err, ErrExternalTool))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "external tool failure: postprocess: transcode: exit status 1", err.Error())
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrAssembly, "assembler", "", nil)
	assert.Equal(t, "assembly failure: assembler", err.Error())
	assert.Equal(t, ErrAssembly, Wrap(ErrAssembly, "", "", nil))
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(Wrap(ErrResourceInit, "voices", "load", nil)))
	assert.False(t, Fatal(Wrap(ErrSynthesis, "tts", "chunk", nil)))
	assert.False(t, Fatal(nil))
}
