package ws

import (
	"sync"

	"github.com/huddle-rtc/huddle/internal/infrastructure/metrics"
)

// Manager tracks which connections belong to which room so the router can
// compute fan-out audiences. It knows nothing about room state; the registry
// owns that.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // roomID -> userID -> client

	metrics *metrics.Relay
}

func NewManager(m *metrics.Relay) *Manager {
	return &Manager{
		rooms:   make(map[string]map[string]*Client),
		metrics: m,
	}
}

// Add subscribes a client to its room's channel. A second connection for the
// same user replaces the first.
func (m *Manager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.rooms[c.RoomID]
	if !ok {
		clients = make(map[string]*Client)
		m.rooms[c.RoomID] = clients
	}
	// A replaced connection's Remove later returns false and never
	// decrements, so a replacement must not increment either.
	replaced := false
	if prev, ok := clients[c.UserID]; ok && prev != c {
		prev.close()
		replaced = true
	}
	clients[c.UserID] = c

	if m.metrics != nil && !replaced {
		m.metrics.ConnectionsActive.Inc()
	}
}

// Remove unsubscribes a client. Returns false when the client was never
// added (e.g. it disconnected before completing a join).
func (m *Manager) Remove(c *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.rooms[c.RoomID]
	if !ok {
		return false
	}
	if cur, ok := clients[c.UserID]; !ok || cur != c {
		return false
	}
	delete(clients, c.UserID)
	if len(clients) == 0 {
		delete(m.rooms, c.RoomID)
	}

	if m.metrics != nil {
		m.metrics.ConnectionsActive.Dec()
	}
	return true
}

// Broadcast fans a message out to every client in the room, optionally
// excluding one user id. Returns how many deliveries were enqueued.
func (m *Manager) Broadcast(roomID string, msg *Message, exceptUserID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := 0
	for userID, cl := range m.rooms[roomID] {
		if userID == exceptUserID {
			continue
		}
		if cl.TrySend(msg) {
			sent++
		} else if m.metrics != nil {
			m.metrics.DroppedMessages.Inc()
		}
	}
	if m.metrics != nil && sent > 0 {
		m.metrics.BroadcastsTotal.Add(float64(sent))
	}
	return sent
}

// SendToUser delivers a directed control signal to a single participant.
func (m *Manager) SendToUser(roomID, userID string, msg *Message) bool {
	m.mu.RLock()
	cl, ok := m.rooms[roomID][userID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return cl.TrySend(msg)
}

// ClientsInRoom returns the live connections for a room.
func (m *Manager) ClientsInRoom(roomID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Client, 0, len(m.rooms[roomID]))
	for _, cl := range m.rooms[roomID] {
		out = append(out, cl)
	}
	return out
}
