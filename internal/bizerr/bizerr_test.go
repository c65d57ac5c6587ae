package bizerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfAndReason(t *testing.T) {
	err := Precondition("insufficient_credits")
	assert.Equal(t, CodePrecondition, CodeOf(err))
	assert.Equal(t, "insufficient_credits", Reason(err))
}

func TestCodeOfDefaultsToFatalForForeignError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, CodeFatal, CodeOf(err))
	assert.Equal(t, "", Reason(err))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("network down")
	err := Wrap(CodeTransient, "dictionary_refresh", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeTransient, CodeOf(err))
}

func TestErrorStringIncludesCauseWhenPresent(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(CodeTransient, "http", cause)
	assert.Contains(t, err.Error(), "timeout")

	bare := Invalid("amount")
	assert.NotContains(t, bare.Error(), "<nil>")
}

func TestCodeOfThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("context: %w", Busy())
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Equal(t, "busy", Reason(err))
}

func TestCodeStringCoversAllValues(t *testing.T) {
	cases := map[Code]string{
		CodeInvalidInput:  "invalid_input",
		CodePrecondition:  "precondition",
		CodeConflict:      "conflict",
		CodeBudget:        "budget",
		CodeTransient:     "transient",
		CodeFatal:         "fatal",
		Code(999):         "unknown",
	}
	for code, want := range cases {
		assert.Equal(t, want, code.String())
	}
}
