package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Room is the unit of atomic mutation: membership, host authority, draw
// permissions, the raised-hand queue and the whiteboard drawing log. Rooms
// carry no lock of their own; the registry serializes all access so every
// method here runs single-writer per room id.
//
// Invariants kept by the methods below: if the room has members, exactly one
// of them is host and HostID names it; hands can only be raised by members.
type Room struct {
	ID         string
	Locked     bool
	Password   string // cleartext, compared by equality (preserved behavior)
	HostID     string // empty when the room has no members
	Background string

	// LastActivity is stamped by the registry on every resolve and drives
	// the eviction sweep.
	LastActivity time.Time

	members  map[string]*Member
	drawings []DrawingOp
	nextSeq  uint64
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		members: make(map[string]*Member),
	}
}

// Join upserts a participant. The first joiner becomes host and gains draw
// permission. When the room is locked, anyone but the host must present the
// stored password.
func (r *Room) Join(userID, name, password string) (*Member, error) {
	if userID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	existing, rejoining := r.members[userID]

	if r.Locked && !(rejoining && existing.IsHost) {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if password != r.Password {
			return nil, ErrPasswordMismatch
		}
	}

	if rejoining {
		existing.Name = name
		return existing, nil
	}

	r.nextSeq++
	m := &Member{
		ID:       userID,
		Name:     name,
		JoinedAt: time.Now(),
		joinSeq:  r.nextSeq,
	}
	if r.HostID == "" {
		m.IsHost = true
		m.CanDraw = true
		r.HostID = userID
	}
	r.members[userID] = m

	return m, nil
}

// Remove deletes a participant. If the departing participant was host and
// members remain, the earliest remaining joiner is promoted and granted draw
// permission. Returns the removed member and the new host (nil when the host
// did not change).
func (r *Room) Remove(userID string) (removed, newHost *Member) {
	m, ok := r.members[userID]
	if !ok {
		return nil, nil
	}
	delete(r.members, userID)

	if r.HostID != userID {
		return m, nil
	}

	r.HostID = ""
	for _, cand := range r.members {
		if newHost == nil || cand.joinSeq < newHost.joinSeq {
			newHost = cand
		}
	}
	if newHost != nil {
		newHost.IsHost = true
		newHost.CanDraw = true
		r.HostID = newHost.ID
	}
	return m, newHost
}

// MakeHost transfers host authority from the caller to the target, granting
// the target draw permission.
func (r *Room) MakeHost(callerID, targetID string) error {
	if err := r.requireHost(callerID); err != nil {
		return err
	}
	target, ok := r.members[targetID]
	if !ok {
		return ErrMemberNotFound
	}
	r.members[callerID].IsHost = false
	target.IsHost = true
	target.CanDraw = true
	r.HostID = targetID
	return nil
}

func (r *Room) SetCanDraw(callerID, targetID string, allow bool) error {
	if err := r.requireHost(callerID); err != nil {
		return err
	}
	target, ok := r.members[targetID]
	if !ok {
		return ErrMemberNotFound
	}
	target.CanDraw = allow
	return nil
}

// SetLock locks the room behind a password. Only the host may lock, and the
// password must be non-empty.
func (r *Room) SetLock(callerID, password string) error {
	if err := r.requireHost(callerID); err != nil {
		return err
	}
	if password == "" {
		return ErrEmptyPassword
	}
	r.Locked = true
	r.Password = password
	return nil
}

func (r *Room) ClearLock(callerID string) error {
	if err := r.requireHost(callerID); err != nil {
		return err
	}
	r.Locked = false
	r.Password = ""
	return nil
}

// SetHandRaised flips the hand flag for a member; returns the member and
// whether it exists.
func (r *Room) SetHandRaised(userID string, raised bool) (*Member, bool) {
	m, ok := r.members[userID]
	if !ok {
		return nil, false
	}
	m.HandRaised = raised
	return m, true
}

func (r *Room) LowerAllHands(callerID string) error {
	if err := r.requireHost(callerID); err != nil {
		return err
	}
	for _, m := range r.members {
		m.HandRaised = false
	}
	return nil
}

// AppendDrawing validates the op, stamps a fresh server-side id and appends
// it to the drawing log. The returned op carries the assigned id.
func (r *Room) AppendDrawing(userID string, op DrawingOp) (DrawingOp, error) {
	if err := r.requireDraw(userID); err != nil {
		return DrawingOp{}, err
	}
	if !op.Kind.Valid() {
		return DrawingOp{}, ErrUnknownDrawingKind
	}
	op.ID = uuid.NewString()
	r.drawings = append(r.drawings, op)
	return op, nil
}

func (r *Room) SetBackground(userID, blob string) error {
	if err := r.requireDraw(userID); err != nil {
		return err
	}
	r.Background = blob
	return nil
}

// ClearDrawings empties the drawing log and drops the background.
func (r *Room) ClearDrawings(userID string) error {
	if err := r.requireDraw(userID); err != nil {
		return err
	}
	r.drawings = nil
	r.Background = ""
	return nil
}

func (r *Room) Member(userID string) (*Member, bool) {
	m, ok := r.members[userID]
	return m, ok
}

func (r *Room) MemberCount() int {
	return len(r.members)
}

// Members returns a copy of the member list in join order.
func (r *Room) Members() []Member {
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].joinSeq < out[j].joinSeq })
	return out
}

// Drawings returns a copy of the drawing log in append order.
func (r *Room) Drawings() []DrawingOp {
	out := make([]DrawingOp, len(r.drawings))
	copy(out, r.drawings)
	return out
}

func (r *Room) requireHost(callerID string) error {
	m, ok := r.members[callerID]
	if !ok {
		return ErrMemberNotFound
	}
	if !m.IsHost {
		return ErrNotHost
	}
	return nil
}

func (r *Room) requireDraw(userID string) error {
	m, ok := r.members[userID]
	if !ok {
		return ErrMemberNotFound
	}
	if !m.CanDraw {
		return ErrNoDrawPermission
	}
	return nil
}
