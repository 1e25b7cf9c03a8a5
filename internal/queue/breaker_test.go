package queue

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 2, time.Minute)
	cb.now = func() time.Time { return now }

	fail := func() error { return stderrors.New("broker down") }
	ok := func() error { return nil }

	assert.Error(t, cb.Call(fail))
	assert.Equal(t, BreakerClosed, cb.State())
	assert.Error(t, cb.Call(fail))
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.NoError(t, cb.Call(ok))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 1, time.Minute)
	cb.now = func() time.Time { return now }

	assert.Error(t, cb.Call(func() error { return stderrors.New("x") }))
	assert.Equal(t, BreakerOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.Error(t, cb.Call(func() error { return stderrors.New("still down") }))
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)

	assert.Error(t, cb.Call(func() error { return stderrors.New("x") }))
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Error(t, cb.Call(func() error { return stderrors.New("x") }))
	assert.Equal(t, BreakerClosed, cb.State())
}
