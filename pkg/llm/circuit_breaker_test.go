package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_ClosedAllows(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

	ok, err := cb.Allow()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 3, ResetAfter: time.Minute})

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		ok, err := cb.Allow()
		require.NoError(t, err)
		assert.True(t, ok, "should allow before threshold")
	}

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	ok, err := cb.Allow()
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 1, ResetAfter: time.Millisecond})

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	ok, err := cb.Allow()
	require.NoError(t, err)
	assert.True(t, ok, "probe should pass after reset timeout")
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Second request while probe is in flight is rejected.
	ok, err = cb.Allow()
	assert.False(t, ok)
	require.Error(t, err)

	// Probe success closes the circuit.
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 1, ResetAfter: time.Millisecond})

	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)

	ok, _ := cb.Allow()
	require.True(t, ok)

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}
