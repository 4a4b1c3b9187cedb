package errors

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorErrorMessage(t *testing.T) {
	err := NewNetwork("Kabum", "fetch failed", io.ErrUnexpectedEOF)
	assert.Equal(t, "[network] Kabum: fetch failed - unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = NewValidation("Kabum", "empty term list")
	assert.Equal(t, "[validation] Kabum: empty term list", err.Error())

	err = NewConfiguration("no stores configured", nil)
	assert.Equal(t, "[configuration] no stores configured", err.Error())

	err = NewCache("Kabum", "store rate-limit block", io.ErrClosedPipe)
	assert.Equal(t, "[cache] Kabum: store rate-limit block - io: read/write on closed pipe", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("Kabum", "x", nil).IsRetryable())
	assert.False(t, NewRateLimit("Kabum", time.Minute).IsRetryable())
	assert.False(t, NewParsing("Kabum", "x", nil).IsRetryable())
	assert.False(t, NewTimeout("Kabum", 2*time.Minute).IsRetryable())
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("term %q: %w", "galaxy a05s", NewRateLimit("Kabum", time.Minute))
	assert.True(t, IsType(wrapped, ErrorTypeRateLimit))
	assert.False(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(io.EOF, ErrorTypeNetwork))
}
