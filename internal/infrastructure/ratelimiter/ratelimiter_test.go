package ratelimiter

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_ExhaustsBurst(t *testing.T) {
	l := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("src"), "request %d should fit in the burst", i)
	}
	assert.False(t, l.Allow("src"), "burst exhausted")
	assert.Equal(t, 0, l.Remaining("src"))
}

func TestAllow_SourcesAreIndependent(t *testing.T) {
	l := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestGetSourceKey_HeaderThenRemoteAddr(t *testing.T) {
	l := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:4242"
	assert.Equal(t, "10.0.0.1:4242", l.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", l.GetSourceKey(r))
}

func TestNew_BurstDefaultsToRate(t *testing.T) {
	l := New(Options{MaxRatePerSecond: 5})
	assert.Equal(t, 5, l.GetMaxBurst())
}
