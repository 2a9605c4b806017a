// Package jitter добавляет случайную составляющую к интервалам повторов,
// чтобы воркеры разных инстансов не ходили во внешнюю систему синхронно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает d с джиттером в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}

	return d + time.Duration(rand.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (attempt с нуля), не превышая max, и добавляет джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}

	if backoff > max {
		backoff = max
	}

	return Duration(backoff, jitterFactor)
}
