package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/huddle-rtc/huddle/internal/domain"
	"github.com/huddle-rtc/huddle/internal/infrastructure/logging"
	"github.com/huddle-rtc/huddle/internal/infrastructure/metrics"
	"github.com/huddle-rtc/huddle/internal/infrastructure/registry"
)

// Router validates inbound events against room state, applies the mutation
// and fans the result out to the computed audience. Every event for a room
// runs to completion under that room's lock, so concurrent joins, disconnects
// and draw ops on one room are linearizable; events for different rooms
// proceed in parallel.
type Router struct {
	registry   *registry.Registry
	manager    *Manager
	metrics    *metrics.Relay
	logger     logging.Logger
	chatWindow time.Duration
}

func NewRouter(reg *registry.Registry, manager *Manager, m *metrics.Relay, logger logging.Logger, chatWindow time.Duration) *Router {
	if chatWindow == 0 {
		chatWindow = time.Second
	}
	return &Router{
		registry:   reg,
		manager:    manager,
		metrics:    m,
		logger:     logger,
		chatWindow: chatWindow,
	}
}

func (r *Router) Dispatch(c *Client, env Envelope) {
	if r.metrics != nil {
		r.metrics.EventsTotal.WithLabelValues(env.Type).Inc()
	}

	switch env.Type {
	case EvtJoin:
		r.handleJoin(c, env.Data)
	case EvtLock:
		r.handleLock(c, env.Data)
	case EvtUnlock:
		r.handleUnlock(c)
	case EvtChatSend:
		r.handleChatSend(c, env.Data)
	case EvtReactionSend:
		r.handleReactionSend(c, env.Data)
	case EvtWbEnable:
		r.handleWhiteboardToggle(c, true)
	case EvtWbDisable:
		r.handleWhiteboardToggle(c, false)
	case EvtWbDraw:
		r.handleDraw(c, env.Data)
	case EvtWbBackground:
		r.handleBackground(c, env.Data)
	case EvtWbClear:
		r.handleClear(c)
	case EvtWbAllowDraw:
		r.handleAllowDraw(c, env.Data)
	case EvtMakeHost:
		r.handleMakeHost(c, env.Data)
	case EvtHandRaise:
		r.handleHand(c, true)
	case EvtHandLower:
		r.handleHand(c, false)
	case EvtHandLowerAll:
		r.handleLowerAll(c)
	case EvtModeratorMute:
		r.handleModerator(c, env.Data, NewForceMute(c.RoomID))
	case EvtModeratorKick:
		r.handleModerator(c, env.Data, NewForceLeave(c.RoomID))
	default:
		r.sendError(c, CodeMalformed, "unknown event type")
	}
}

// handleJoin is the only handler that may create the room. The sender gets
// the full room snapshot followed by the whiteboard replay while the room
// lock is held, so replay order is a strict prefix of the live stream from
// this connection's point of view.
func (r *Router) handleJoin(c *Client, data json.RawMessage) {
	if c.RoomID == "" || c.UserID == "" {
		r.sendError(c, CodeMalformed, "missing room or user id")
		return
	}

	var p JoinPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			r.sendError(c, CodeMalformed, "malformed join payload")
			return
		}
	}

	r.registry.WithRoom(c.RoomID, func(room *domain.Room) {
		m, err := room.Join(c.UserID, c.DisplayName, p.Password)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrPasswordRequired):
				c.TrySend(NewPasswordRequired(c.RoomID))
			case errors.Is(err, domain.ErrPasswordMismatch):
				r.sendError(c, CodePasswordMismatch, "wrong room password")
			default:
				r.sendError(c, CodeMalformed, "cannot join room")
			}
			return
		}

		r.manager.Add(c)

		members := room.Members()
		c.TrySend(NewRoomState(room.ID, room.Locked, room.HostID, members, m.CanDraw))
		c.TrySend(NewWhiteboardState(room.ID, room.Drawings(), room.Background))
		r.manager.Broadcast(room.ID, NewRoomMembers(room.ID, members), c.UserID)

		r.logger.Info(logging.Room, logging.Join, "participant joined", map[logging.ExtraKey]any{
			logging.RoomID: room.ID,
			logging.UserID: c.UserID,
		})
	})
}

func (r *Router) handleLock(c *Client, data json.RawMessage) {
	var p LockPayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.sendError(c, CodeMalformed, "malformed lock payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		switch err := room.SetLock(c.UserID, p.Password); {
		case err == nil:
			r.manager.Broadcast(room.ID, NewRoomLocked(room.ID), "")
		case errors.Is(err, domain.ErrEmptyPassword):
			r.sendError(c, CodeMalformed, "password must not be empty")
		default:
			r.denyOrIgnore(c, err)
		}
	})
}

func (r *Router) handleUnlock(c *Client) {
	r.withRoom(c, func(room *domain.Room) {
		if err := room.ClearLock(c.UserID); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewRoomUnlocked(room.ID), "")
	})
}

func (r *Router) handleChatSend(c *Client, data json.RawMessage) {
	var p ChatSendPayload
	if err := json.Unmarshal(data, &p); err != nil || (p.Text == "" && p.Attachment == "") {
		r.sendError(c, CodeMalformed, "malformed chat payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		if _, ok := room.Member(c.UserID); !ok {
			return
		}
		if !c.allowChat(time.Now(), r.chatWindow) {
			r.sendError(c, CodeRateLimited, "chat throttled: one message per second")
			return
		}

		msg := NewChatMessage(room.ID, ChatMessagePayload{
			ID:         uuid.NewString(),
			UserID:     c.UserID,
			UserName:   c.DisplayName,
			Text:       p.Text,
			Attachment: p.Attachment,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
		r.manager.Broadcast(room.ID, msg, "")
	})
}

func (r *Router) handleReactionSend(c *Client, data json.RawMessage) {
	var p ReactionSendPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Kind == "" {
		r.sendError(c, CodeMalformed, "malformed reaction payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		if _, ok := room.Member(c.UserID); !ok {
			return
		}
		r.manager.Broadcast(room.ID, NewReaction(room.ID, uuid.NewString(), c.UserID, p.Kind), c.UserID)
	})
}

// handleWhiteboardToggle is an informational broadcast; no stored flag.
func (r *Router) handleWhiteboardToggle(c *Client, enable bool) {
	r.withRoom(c, func(room *domain.Room) {
		m, ok := room.Member(c.UserID)
		if !ok {
			return
		}
		if !m.IsHost {
			r.sendError(c, CodeAuthorizationDenied, "only the host can toggle the whiteboard")
			return
		}
		if enable {
			r.manager.Broadcast(room.ID, NewWhiteboardEnabled(room.ID), "")
		} else {
			r.manager.Broadcast(room.ID, NewWhiteboardDisabled(room.ID), "")
		}
	})
}

func (r *Router) handleDraw(c *Client, data json.RawMessage) {
	var p DrawPayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.sendError(c, CodeMalformed, "malformed drawing payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		op, err := room.AppendDrawing(c.UserID, domain.DrawingOp{
			Kind:        p.Kind,
			Points:      p.Points,
			Color:       p.Color,
			StrokeWidth: p.StrokeWidth,
			Filled:      p.Filled,
			Text:        p.Text,
		})
		switch {
		case err == nil:
			r.manager.Broadcast(room.ID, NewWhiteboardDraw(room.ID, op), c.UserID)
		case errors.Is(err, domain.ErrUnknownDrawingKind):
			r.sendError(c, CodeMalformed, "unknown drawing kind")
		default:
			r.denyOrIgnore(c, err)
		}
	})
}

func (r *Router) handleBackground(c *Client, data json.RawMessage) {
	var p BackgroundPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Background == "" {
		r.sendError(c, CodeMalformed, "malformed background payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		if err := room.SetBackground(c.UserID, p.Background); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewWhiteboardBackground(room.ID, p.Background), c.UserID)
	})
}

func (r *Router) handleClear(c *Client) {
	r.withRoom(c, func(room *domain.Room) {
		if err := room.ClearDrawings(c.UserID); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewWhiteboardClear(room.ID), c.UserID)
	})
}

func (r *Router) handleAllowDraw(c *Client, data json.RawMessage) {
	var p AllowDrawPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TargetID == "" {
		r.sendError(c, CodeMalformed, "malformed allow-draw payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		if err := room.SetCanDraw(c.UserID, p.TargetID, p.Allow); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewDrawPermission(room.ID, p.TargetID, p.Allow), "")
		r.manager.Broadcast(room.ID, NewRoomMembers(room.ID, room.Members()), "")
	})
}

func (r *Router) handleMakeHost(c *Client, data json.RawMessage) {
	var p TargetPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TargetID == "" {
		r.sendError(c, CodeMalformed, "malformed make-host payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		if err := room.MakeHost(c.UserID, p.TargetID); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewHostChanged(room.ID, p.TargetID), "")
		r.manager.Broadcast(room.ID, NewRoomMembers(room.ID, room.Members()), "")
	})
}

func (r *Router) handleHand(c *Client, raised bool) {
	r.withRoom(c, func(room *domain.Room) {
		m, ok := room.SetHandRaised(c.UserID, raised)
		if !ok {
			return
		}
		if raised {
			r.manager.Broadcast(room.ID, NewHandRaised(room.ID, m.ID, m.Name), "")
		} else {
			r.manager.Broadcast(room.ID, NewHandLowered(room.ID, m.ID), "")
		}
	})
}

func (r *Router) handleLowerAll(c *Client) {
	r.withRoom(c, func(room *domain.Room) {
		if err := room.LowerAllHands(c.UserID); err != nil {
			r.denyOrIgnore(c, err)
			return
		}
		r.manager.Broadcast(room.ID, NewHandLoweredAll(room.ID), "")
	})
}

// handleModerator relays a directed control signal to the target only; room
// state never changes.
func (r *Router) handleModerator(c *Client, data json.RawMessage, signal *Message) {
	var p TargetPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TargetID == "" {
		r.sendError(c, CodeMalformed, "malformed moderation payload")
		return
	}

	r.withRoom(c, func(room *domain.Room) {
		m, ok := room.Member(c.UserID)
		if !ok {
			return
		}
		if !m.IsHost {
			r.sendError(c, CodeAuthorizationDenied, "only the host can moderate")
			return
		}
		if _, ok := room.Member(p.TargetID); !ok {
			// Racing a disconnect; the caller will shortly see a fresh
			// member list.
			return
		}
		r.manager.SendToUser(room.ID, p.TargetID, signal)

		r.logger.Info(logging.Moderation, logging.Dispatch, "moderation signal relayed", map[logging.ExtraKey]any{
			logging.RoomID:    room.ID,
			logging.UserID:    c.UserID,
			logging.EventType: signal.Type,
			"targetId":        p.TargetID,
		})
	})
}

// Disconnect runs host failover synchronously as part of the disconnect
// path. It is invoked exactly once per connection, when the read pump exits.
func (r *Router) Disconnect(c *Client) {
	if c.RoomID == "" {
		return
	}

	empty := false
	found := r.registry.WithExistingRoom(c.RoomID, func(room *domain.Room) {
		// The supersession check must run under the same room lock as the
		// membership mutation: a rejoin that won the lock first has already
		// replaced this connection in the manager, and Remove returning
		// false (never joined, or superseded) means room state is not ours
		// to touch.
		if !r.manager.Remove(c) {
			return
		}

		removed, newHost := room.Remove(c.UserID)
		if removed == nil {
			return
		}

		switch {
		case room.MemberCount() == 0:
			// Best-effort cleanup signal for any stragglers.
			r.manager.Broadcast(room.ID, NewWhiteboardDisabled(room.ID), "")
			empty = true
		case newHost != nil:
			r.manager.Broadcast(room.ID, NewHostChanged(room.ID, newHost.ID), "")
			r.broadcastRoomState(room)
			r.logger.Info(logging.Room, logging.Failover, "host failover", map[logging.ExtraKey]any{
				logging.RoomID: room.ID,
				"oldHostId":    removed.ID,
				"newHostId":    newHost.ID,
			})
		default:
			r.manager.Broadcast(room.ID, NewRoomMembers(room.ID, room.Members()), "")
		}
	})
	if !found {
		// Room already evicted; only the manager entry is left to drop.
		r.manager.Remove(c)
		return
	}

	if empty {
		r.registry.DeleteIfEmpty(c.RoomID)
		r.logger.Info(logging.Room, logging.Leave, "room emptied", map[logging.ExtraKey]any{
			logging.RoomID: c.RoomID,
		})
	}
}

// broadcastRoomState sends each live connection its own snapshot, since the
// canDraw field in room-state is per-recipient.
func (r *Router) broadcastRoomState(room *domain.Room) {
	members := room.Members()
	for _, cl := range r.manager.ClientsInRoom(room.ID) {
		canDraw := false
		if m, ok := room.Member(cl.UserID); ok {
			canDraw = m.CanDraw
		}
		cl.TrySend(NewRoomState(room.ID, room.Locked, room.HostID, members, canDraw))
	}
}

// withRoom resolves the session's room without creating it; events for a
// vanished room are silently ignored (the connection had no valid session).
func (r *Router) withRoom(c *Client, fn func(*domain.Room)) {
	r.registry.WithExistingRoom(c.RoomID, fn)
}

// denyOrIgnore maps domain errors to the wire: missing members are dropped
// silently (the sender will shortly receive a fresh member list), permission
// failures go back to the sender only.
func (r *Router) denyOrIgnore(c *Client, err error) {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
		// NotFound: racing a disconnect, drop silently.
	case errors.Is(err, domain.ErrNotHost):
		r.sendError(c, CodeAuthorizationDenied, "host authority required")
	case errors.Is(err, domain.ErrNoDrawPermission):
		r.sendError(c, CodeAuthorizationDenied, "draw permission required")
	default:
		r.sendError(c, CodeMalformed, err.Error())
	}
}

func (r *Router) sendError(c *Client, code, msg string) {
	if r.metrics != nil {
		r.metrics.ErrorsTotal.WithLabelValues(code).Inc()
	}
	c.TrySend(NewError(c.RoomID, code, msg))
}

func (r *Router) logReadError(c *Client, err error) {
	r.logger.Warn(logging.Transport, logging.Dispatch, "ws read error", map[logging.ExtraKey]any{
		logging.RoomID:       c.RoomID,
		logging.UserID:       c.UserID,
		logging.ErrorMessage: err.Error(),
	})
}
