package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJoin(t *testing.T, r *Room, id, name, password string) *Member {
	t.Helper()
	m, err := r.Join(id, name, password)
	require.NoError(t, err)
	return m
}

func hostCount(r *Room) int {
	n := 0
	for _, m := range r.Members() {
		if m.IsHost {
			n++
		}
	}
	return n
}

func TestRoom_FirstJoinerBecomesHost(t *testing.T) {
	r := NewRoom("r1")

	h := mustJoin(t, r, "u1", "alice", "")

	assert.True(t, h.IsHost)
	assert.True(t, h.CanDraw)
	assert.Equal(t, "u1", r.HostID)
}

func TestRoom_SingleHostInvariant(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "u1", "alice", "")
	mustJoin(t, r, "u2", "bob", "")
	mustJoin(t, r, "u3", "carol", "")

	assert.Equal(t, 1, hostCount(r))

	require.NoError(t, r.MakeHost("u1", "u2"))
	assert.Equal(t, 1, hostCount(r))
	assert.Equal(t, "u2", r.HostID)

	r.Remove("u2")
	assert.Equal(t, 1, hostCount(r))

	r.Remove("u1")
	r.Remove("u3")
	assert.Equal(t, "", r.HostID)
	assert.Equal(t, 0, r.MemberCount())
}

func TestRoom_FailoverPromotesEarliestJoiner(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "a", "ann", "")
	mustJoin(t, r, "b", "ben", "")

	removed, newHost := r.Remove("h")

	require.NotNil(t, removed)
	require.NotNil(t, newHost)
	assert.Equal(t, "a", newHost.ID, "earliest remaining joiner must be promoted")
	assert.True(t, newHost.IsHost)
	assert.True(t, newHost.CanDraw, "failover grants draw permission")
	assert.Equal(t, "a", r.HostID)
}

func TestRoom_RemoveNonHostKeepsHost(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "a", "ann", "")

	removed, newHost := r.Remove("a")

	require.NotNil(t, removed)
	assert.Nil(t, newHost)
	assert.Equal(t, "h", r.HostID)
}

func TestRoom_RemoveUnknownMemberIsNoop(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")

	removed, newHost := r.Remove("ghost")

	assert.Nil(t, removed)
	assert.Nil(t, newHost)
	assert.Equal(t, 1, r.MemberCount())
}

func TestRoom_LockRoundTrip(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")

	require.NoError(t, r.SetLock("h", "s3cret"))
	assert.True(t, r.Locked)

	_, err := r.Join("u2", "bob", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = r.Join("u2", "bob", "wrong")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, 1, r.MemberCount(), "failed join must not change membership")

	m, err := r.Join("u2", "bob", "s3cret")
	require.NoError(t, err)
	assert.False(t, m.IsHost)
	assert.Equal(t, 2, r.MemberCount())
}

func TestRoom_HostRejoinsLockedRoomWithoutPassword(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	require.NoError(t, r.SetLock("h", "s3cret"))

	_, err := r.Join("h", "host", "")
	assert.NoError(t, err)
}

func TestRoom_LockRequiresHostAndPassword(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "u", "bob", "")

	assert.ErrorIs(t, r.SetLock("u", "pw"), ErrNotHost)
	assert.ErrorIs(t, r.SetLock("h", ""), ErrEmptyPassword)

	require.NoError(t, r.SetLock("h", "pw"))
	require.NoError(t, r.ClearLock("h"))
	assert.False(t, r.Locked)
	assert.Empty(t, r.Password)
}

func TestRoom_DrawPermissionGating(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "u", "bob", "")

	op := DrawingOp{Kind: DrawStroke, Points: []Point{{X: 1, Y: 2}}}

	_, err := r.AppendDrawing("u", op)
	assert.ErrorIs(t, err, ErrNoDrawPermission)
	assert.Empty(t, r.Drawings(), "denied draw must not mutate the log")

	require.NoError(t, r.SetCanDraw("h", "u", true))
	stored, err := r.AppendDrawing("u", op)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Len(t, r.Drawings(), 1)
}

func TestRoom_DrawingIDsAreServerAssignedAndUnique(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		op, err := r.AppendDrawing("h", DrawingOp{Kind: DrawLine, ID: "client-supplied"})
		require.NoError(t, err)
		assert.NotEqual(t, "client-supplied", op.ID)
		assert.False(t, seen[op.ID], "drawing ids must be unique")
		seen[op.ID] = true
	}
}

func TestRoom_UnknownDrawingKindRejected(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")

	_, err := r.AppendDrawing("h", DrawingOp{Kind: "scribble"})
	assert.ErrorIs(t, err, ErrUnknownDrawingKind)
}

func TestRoom_ClearDropsDrawingsAndBackground(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")

	_, err := r.AppendDrawing("h", DrawingOp{Kind: DrawRect})
	require.NoError(t, err)
	require.NoError(t, r.SetBackground("h", "data:image/png;base64,xyz"))

	require.NoError(t, r.ClearDrawings("h"))
	assert.Empty(t, r.Drawings())
	assert.Empty(t, r.Background)
}

func TestRoom_HandsFollowMembership(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "u", "bob", "")

	_, ok := r.SetHandRaised("u", true)
	require.True(t, ok)

	_, ok = r.SetHandRaised("ghost", true)
	assert.False(t, ok)

	require.NoError(t, r.LowerAllHands("h"))
	for _, m := range r.Members() {
		assert.False(t, m.HandRaised)
	}

	assert.ErrorIs(t, r.LowerAllHands("u"), ErrNotHost)
}

func TestRoom_MembersPreserveJoinOrderAcrossRejoin(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "a", "ann", "")
	mustJoin(t, r, "b", "ben", "")
	mustJoin(t, r, "c", "carol", "")

	// Rejoin keeps the original place in the succession.
	mustJoin(t, r, "b", "benjamin", "")

	members := r.Members()
	require.Len(t, members, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{members[0].ID, members[1].ID, members[2].ID})
	assert.Equal(t, "benjamin", members[1].Name)
}

func TestRoom_MakeHostTransfersAuthority(t *testing.T) {
	r := NewRoom("r1")
	mustJoin(t, r, "h", "host", "")
	mustJoin(t, r, "u", "bob", "")

	assert.ErrorIs(t, r.MakeHost("u", "h"), ErrNotHost)
	assert.ErrorIs(t, r.MakeHost("h", "ghost"), ErrMemberNotFound)

	require.NoError(t, r.MakeHost("h", "u"))
	assert.Equal(t, "u", r.HostID)

	m, _ := r.Member("u")
	assert.True(t, m.IsHost)
	assert.True(t, m.CanDraw)
	old, _ := r.Member("h")
	assert.False(t, old.IsHost)
}
