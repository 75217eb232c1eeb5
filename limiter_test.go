package spacetraveling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) *LoginLimiter {
	t.Helper()
	l := NewLoginLimiter(max, window)
	t.Cleanup(l.Close)
	return l
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)
	ip := "203.0.113.10"

	require.True(t, limiter.Check(ip))
	limiter.Record(ip)
	require.True(t, limiter.Check(ip))
	limiter.Record(ip)
	require.False(t, limiter.Check(ip), "third attempt is blocked")
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	ip := "203.0.113.11"

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Check(ip))
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := newTestLimiter(t, 1, 150*time.Millisecond)
	ip := "203.0.113.20"

	limiter.Record(ip)
	require.False(t, limiter.Check(ip))

	time.Sleep(200 * time.Millisecond)
	require.True(t, limiter.Check(ip), "attempt after window is allowed")
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)

	limiter.Record("203.0.113.30")
	require.False(t, limiter.Check("203.0.113.30"))
	require.True(t, limiter.Check("203.0.113.31"))
}

func TestLoginLimiterCloseTwice(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	limiter.Close()
	limiter.Close()
}
