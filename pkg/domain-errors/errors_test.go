package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeQuotaExceeded, "quota exhausted")
		assert.Equal(t, CodeQuotaExceeded, CodeOf(err))
	})

	t.Run("wrapped in fmt chain", func(t *testing.T) {
		err := fmt.Errorf("issue failed: %w", New(CodeTokenPaused, "instrument paused"))
		assert.Equal(t, CodeTokenPaused, CodeOf(err))
		assert.True(t, HasCode(err, CodeTokenPaused))
	})

	t.Run("unclassified defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "ledger call failed")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ledger call failed")
	assert.Contains(t, err.Error(), "connection refused")
}
