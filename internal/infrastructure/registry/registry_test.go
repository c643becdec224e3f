package registry

import (
	"testing"
	"time"

	"github.com/huddle-rtc/huddle/internal/domain"
	"github.com/huddle-rtc/huddle/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return New(30*time.Minute, time.Minute, logging.NewNop(), nil)
}

func TestWithRoom_CreatesLazily(t *testing.T) {
	reg := newTestRegistry()

	assert.Equal(t, 0, reg.Len())

	var got *domain.Room
	reg.WithRoom("r1", func(r *domain.Room) { got = r })

	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 1, reg.Len())

	// Second resolve returns the same room.
	reg.WithRoom("r1", func(r *domain.Room) {
		assert.Same(t, got, r)
	})
	assert.Equal(t, 1, reg.Len())
}

func TestWithRoom_StampsActivity(t *testing.T) {
	reg := newTestRegistry()

	var first time.Time
	reg.WithRoom("r1", func(r *domain.Room) { first = r.LastActivity })
	assert.False(t, first.IsZero())

	reg.WithExistingRoom("r1", func(r *domain.Room) {
		assert.False(t, r.LastActivity.Before(first))
	})
}

func TestWithExistingRoom_AbsentRoomIgnored(t *testing.T) {
	reg := newTestRegistry()

	ran := false
	ok := reg.WithExistingRoom("missing", func(*domain.Room) { ran = true })

	assert.False(t, ok)
	assert.False(t, ran)
	assert.Equal(t, 0, reg.Len(), "routing reads must not create rooms")
}

func TestSweep_EvictsOnlyIdleRooms(t *testing.T) {
	reg := newTestRegistry()
	now := time.Now()

	reg.WithRoom("idle", func(r *domain.Room) {
		r.LastActivity = now.Add(-1801 * time.Second)
	})
	reg.WithRoom("fresh", func(r *domain.Room) {
		r.LastActivity = now.Add(-1799 * time.Second)
	})

	evicted := reg.Sweep(now)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, reg.Len())
	assert.False(t, reg.WithExistingRoom("idle", func(*domain.Room) {}))
	assert.True(t, reg.WithExistingRoom("fresh", func(*domain.Room) {}))
}

func TestSweep_EvictedIDIsReusable(t *testing.T) {
	reg := newTestRegistry()
	now := time.Now()

	reg.WithRoom("r1", func(r *domain.Room) {
		_, err := r.Join("u1", "alice", "")
		require.NoError(t, err)
		r.LastActivity = now.Add(-time.Hour)
	})

	require.Equal(t, 1, reg.Sweep(now))

	// A later join under the same id gets a fresh, empty room.
	reg.WithRoom("r1", func(r *domain.Room) {
		assert.Equal(t, 0, r.MemberCount())
	})
}

func TestDeleteIfEmpty(t *testing.T) {
	reg := newTestRegistry()

	reg.WithRoom("r1", func(*domain.Room) {})
	assert.True(t, reg.DeleteIfEmpty("r1"))
	assert.Equal(t, 0, reg.Len())

	// Non-empty rooms stay.
	reg.WithRoom("r2", func(r *domain.Room) {
		_, err := r.Join("u1", "alice", "")
		require.NoError(t, err)
	})
	assert.False(t, reg.DeleteIfEmpty("r2"))
	assert.Equal(t, 1, reg.Len())

	assert.False(t, reg.DeleteIfEmpty("missing"))
}
