package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowChat_RollingWindow(t *testing.T) {
	c := newTestClient("u", "r1", "user")
	base := time.Now()

	assert.True(t, c.allowChat(base, time.Second), "first message always passes")
	assert.False(t, c.allowChat(base.Add(900*time.Millisecond), time.Second), "900ms gap is inside the window")
	assert.True(t, c.allowChat(base.Add(1100*time.Millisecond), time.Second), "1100ms gap is outside the window")
}

func TestAllowChat_RejectionDoesNotAdvanceWindow(t *testing.T) {
	c := newTestClient("u", "r1", "user")
	base := time.Now()

	assert.True(t, c.allowChat(base, time.Second))
	assert.False(t, c.allowChat(base.Add(500*time.Millisecond), time.Second))
	// Anchored to the accepted send, not the rejected one.
	assert.True(t, c.allowChat(base.Add(1001*time.Millisecond), time.Second))
}

func TestTrySend_DropsWhenBufferFull(t *testing.T) {
	c := NewClient(nil, "u", "r1", "user", 30*time.Second, 10*time.Second, 2, 0)

	assert.True(t, c.TrySend(&Message{Type: EvtChatMessage}))
	assert.True(t, c.TrySend(&Message{Type: EvtChatMessage}))
	assert.False(t, c.TrySend(&Message{Type: EvtChatMessage}), "full buffer drops instead of blocking")

	<-c.send
	assert.True(t, c.TrySend(&Message{Type: EvtChatMessage}), "space frees up as the writer drains")
}

func TestTrySend_RefusesAfterClose(t *testing.T) {
	c := newTestClient("u", "r1", "user")
	c.close()
	assert.False(t, c.TrySend(&Message{Type: EvtChatMessage}))
}
