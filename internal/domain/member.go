package domain

import "time"

// Member is one participant inside a room. Members are created by Room.Join
// and removed by Room.Remove; permission flags are only mutated through the
// Room so the single-host invariant holds.
type Member struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsHost     bool      `json:"isHost"`
	CanDraw    bool      `json:"canDraw"`
	HandRaised bool      `json:"handRaised"`
	JoinedAt   time.Time `json:"joinedAt"`

	// joinSeq preserves join order for host failover. A rejoining
	// participant keeps their original place in the succession.
	joinSeq uint64
}
