package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the per-connection session: it binds a transport connection to
// (userId, roomId, displayName) plus the connection-local chat throttle
// state. It holds only identifiers, never a reference into room state; the
// router re-resolves the room by id on every event.
type Client struct {
	UserID      string
	RoomID      string
	DisplayName string

	conn *connWrapper
	send chan *Message
	done chan struct{}
	once sync.Once

	pingInterval time.Duration
	writeTimeout time.Duration
	maxPayload   int64

	lastChatSend time.Time
}

func NewClient(conn *websocket.Conn, userID, roomID, displayName string, pingInterval, writeTimeout time.Duration, sendBuffer int, maxPayload int64) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		UserID:       userID,
		RoomID:       roomID,
		DisplayName:  displayName,
		conn:         newConnWrapper(conn),
		send:         make(chan *Message, sendBuffer),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		maxPayload:   maxPayload,
	}
}

// TrySend enqueues a message without blocking. A full buffer means the client
// is too slow; the message is dropped and the caller decides how to account
// for it.
func (c *Client) TrySend(msg *Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// allowChat applies the rolling chat window: at most one message per window
// per connection. On success the window anchor advances to now.
func (c *Client) allowChat(now time.Time, window time.Duration) bool {
	if !c.lastChatSend.IsZero() && now.Sub(c.lastChatSend) < window {
		return false
	}
	c.lastChatSend = now
	return true
}

// ReadPump decodes inbound frames and hands them to the router. It owns the
// read side of the connection: deadlines, pong handling and the disconnect
// path. The connection is declared dead after missing two keep-alive
// intervals.
func (c *Client) ReadPump(r *Router) {
	defer func() {
		r.Disconnect(c)
		c.close()
		_ = c.conn.Close()
	}()

	readDeadline := 2 * c.pingInterval
	if c.maxPayload > 0 {
		c.conn.conn.SetReadLimit(c.maxPayload)
	}
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				r.logReadError(c, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
			c.TrySend(NewError(c.RoomID, CodeMalformed, "unparseable event"))
			continue
		}

		r.Dispatch(c, env)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg, time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
		case <-c.done:
			// Flush whatever is already queued, then stop.
			for {
				select {
				case msg := <-c.send:
					if err := c.conn.WriteJSON(msg, time.Now().Add(c.writeTimeout)); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}
