package ws

import (
	"encoding/json"

	"github.com/huddle-rtc/huddle/internal/domain"
)

// Envelope is the wire frame for inbound events; the payload stays raw until
// the router knows the event type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is the wire frame for outbound events.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data,omitempty"`
}

// Inbound payloads

type JoinPayload struct {
	Password string `json:"password,omitempty"`
}

type LockPayload struct {
	Password string `json:"password"`
}

type ChatSendPayload struct {
	Text       string `json:"text,omitempty"`
	Attachment string `json:"attachment,omitempty"`
}

type ReactionSendPayload struct {
	Kind string `json:"kind"`
}

type DrawPayload struct {
	Kind        domain.DrawingKind `json:"kind"`
	Points      []domain.Point     `json:"points"`
	Color       string             `json:"color,omitempty"`
	StrokeWidth float64            `json:"strokeWidth,omitempty"`
	Filled      bool               `json:"filled,omitempty"`
	Text        string             `json:"text,omitempty"`
}

type BackgroundPayload struct {
	Background string `json:"background"`
}

type AllowDrawPayload struct {
	TargetID string `json:"targetId"`
	Allow    bool   `json:"allow"`
}

type TargetPayload struct {
	TargetID string `json:"targetId"`
}

// Outbound payloads

type RoomStatePayload struct {
	Locked  bool            `json:"locked"`
	HostID  string          `json:"hostId"`
	Members []domain.Member `json:"members"`
	CanDraw bool            `json:"canDraw"`
}

type RoomMembersPayload struct {
	Members []domain.Member `json:"members"`
}

type WhiteboardStatePayload struct {
	Drawings   []domain.DrawingOp `json:"drawings"`
	Background string             `json:"background,omitempty"`
}

type ChatMessagePayload struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Text       string `json:"text,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type ReactionPayload struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Kind   string `json:"kind"`
}

type DrawPermissionPayload struct {
	UserID  string `json:"userId"`
	CanDraw bool   `json:"canDraw"`
}

type HostChangedPayload struct {
	NewHostID string `json:"newHostId"`
}

type HandPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewRoomState(roomID string, locked bool, hostID string, members []domain.Member, canDraw bool) *Message {
	return &Message{
		Type:   EvtRoomState,
		RoomID: roomID,
		Data: RoomStatePayload{
			Locked:  locked,
			HostID:  hostID,
			Members: members,
			CanDraw: canDraw,
		},
	}
}

func NewRoomMembers(roomID string, members []domain.Member) *Message {
	return &Message{
		Type:   EvtRoomMembers,
		RoomID: roomID,
		Data:   RoomMembersPayload{Members: members},
	}
}

func NewWhiteboardState(roomID string, drawings []domain.DrawingOp, background string) *Message {
	return &Message{
		Type:   EvtWhiteboardState,
		RoomID: roomID,
		Data: WhiteboardStatePayload{
			Drawings:   drawings,
			Background: background,
		},
	}
}

func NewChatMessage(roomID string, p ChatMessagePayload) *Message {
	return &Message{Type: EvtChatMessage, RoomID: roomID, Data: p}
}

func NewReaction(roomID, id, userID, kind string) *Message {
	return &Message{
		Type:   EvtReaction,
		RoomID: roomID,
		Data:   ReactionPayload{ID: id, UserID: userID, Kind: kind},
	}
}

func NewWhiteboardDraw(roomID string, op domain.DrawingOp) *Message {
	return &Message{Type: EvtWbDraw, RoomID: roomID, Data: op}
}

func NewWhiteboardBackground(roomID, background string) *Message {
	return &Message{
		Type:   EvtWbBackground,
		RoomID: roomID,
		Data:   BackgroundPayload{Background: background},
	}
}

func NewWhiteboardClear(roomID string) *Message {
	return &Message{Type: EvtWbClear, RoomID: roomID}
}

func NewWhiteboardEnabled(roomID string) *Message {
	return &Message{Type: EvtWbEnabled, RoomID: roomID}
}

func NewWhiteboardDisabled(roomID string) *Message {
	return &Message{Type: EvtWbDisabled, RoomID: roomID}
}

func NewRoomLocked(roomID string) *Message {
	return &Message{Type: EvtRoomLocked, RoomID: roomID}
}

func NewRoomUnlocked(roomID string) *Message {
	return &Message{Type: EvtRoomUnlocked, RoomID: roomID}
}

func NewDrawPermission(roomID, userID string, canDraw bool) *Message {
	return &Message{
		Type:   EvtDrawPermission,
		RoomID: roomID,
		Data:   DrawPermissionPayload{UserID: userID, CanDraw: canDraw},
	}
}

func NewHostChanged(roomID, newHostID string) *Message {
	return &Message{
		Type:   EvtHostChanged,
		RoomID: roomID,
		Data:   HostChangedPayload{NewHostID: newHostID},
	}
}

func NewHandRaised(roomID, userID, userName string) *Message {
	return &Message{
		Type:   EvtHandRaised,
		RoomID: roomID,
		Data:   HandPayload{UserID: userID, UserName: userName},
	}
}

func NewHandLowered(roomID, userID string) *Message {
	return &Message{
		Type:   EvtHandLowered,
		RoomID: roomID,
		Data:   HandPayload{UserID: userID},
	}
}

func NewHandLoweredAll(roomID string) *Message {
	return &Message{Type: EvtHandLoweredAll, RoomID: roomID}
}

func NewForceMute(roomID string) *Message {
	return &Message{Type: EvtForceMute, RoomID: roomID}
}

func NewForceLeave(roomID string) *Message {
	return &Message{Type: EvtForceLeave, RoomID: roomID}
}

func NewError(roomID, code, message string) *Message {
	return &Message{
		Type:   EvtError,
		RoomID: roomID,
		Data:   ErrorPayload{Code: code, Message: message},
	}
}

func NewPasswordRequired(roomID string) *Message {
	return &Message{Type: EvtPasswordRequired, RoomID: roomID}
}
