package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Range(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestDuration_NoJitter(t *testing.T) {
	assert.Equal(t, time.Second, Duration(time.Second, 0))
	assert.Equal(t, time.Duration(0), Duration(0, DefaultJitter))
}

func TestExponentialBackoff(t *testing.T) {
	base := 10 * time.Millisecond
	max := 50 * time.Millisecond

	assert.Equal(t, 10*time.Millisecond, ExponentialBackoff(base, max, 0, 0))
	assert.Equal(t, 20*time.Millisecond, ExponentialBackoff(base, max, 1, 0))
	assert.Equal(t, 40*time.Millisecond, ExponentialBackoff(base, max, 2, 0))
	assert.Equal(t, max, ExponentialBackoff(base, max, 3, 0))
	assert.Equal(t, max, ExponentialBackoff(base, max, 100, 0))
}
