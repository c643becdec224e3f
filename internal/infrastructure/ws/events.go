package ws

// Inbound events. Anything outside this set is rejected as malformed before
// it reaches the router's mutation logic.
const (
	EvtJoin          = "room:join"
	EvtLock          = "room:lock"
	EvtUnlock        = "room:unlock"
	EvtChatSend      = "chat:send"
	EvtReactionSend  = "reaction:send"
	EvtWbEnable      = "whiteboard:enable"
	EvtWbDisable     = "whiteboard:disable"
	EvtWbDraw        = "whiteboard:draw"
	EvtWbBackground  = "whiteboard:background"
	EvtWbClear       = "whiteboard:clear"
	EvtWbAllowDraw   = "whiteboard:allow-draw"
	EvtMakeHost      = "host:make"
	EvtHandRaise     = "hand:raise"
	EvtHandLower     = "hand:lower"
	EvtHandLowerAll  = "hand:lower-all"
	EvtModeratorMute = "moderator:mute"
	EvtModeratorKick = "moderator:remove"
)

// Outbound events.
const (
	EvtRoomState       = "room-state"
	EvtRoomMembers     = "room-members"
	EvtWhiteboardState = "whiteboard-state"
	EvtRoomLocked      = "room:locked"
	EvtRoomUnlocked    = "room:unlocked"
	EvtChatMessage     = "chat:message"
	EvtReaction        = "reaction"
	EvtWbEnabled       = "whiteboard:enabled"
	EvtWbDisabled      = "whiteboard:disabled"
	EvtDrawPermission  = "draw:permission"
	EvtHostChanged     = "host:changed"
	EvtHandRaised      = "hand:raised"
	EvtHandLowered     = "hand:lowered"
	EvtHandLoweredAll  = "hand:lowered-all"
	EvtForceMute       = "moderator:force-mute"
	EvtForceLeave      = "moderator:force-leave"

	EvtError            = "error"
	EvtPasswordRequired = "error:password-required"
)

// Error codes carried in error payloads.
const (
	CodeAuthorizationDenied = "AUTHORIZATION_DENIED"
	CodePasswordMismatch    = "PASSWORD_MISMATCH"
	CodeRateLimited         = "RATE_LIMITED"
	CodeMalformed           = "MALFORMED"
)
