package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Room            Category = "Room"
	Whiteboard      Category = "Whiteboard"
	Chat            Category = "Chat"
	Moderation      Category = "Moderation"
	Transport       Category = "Transport"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup      SubCategory = "Startup"
	RateLimiting SubCategory = "RateLimiting"
	Eviction     SubCategory = "Eviction"

	// Room
	Join     SubCategory = "Join"
	Leave    SubCategory = "Leave"
	Failover SubCategory = "Failover"
	Dispatch SubCategory = "Dispatch"

	// Transport
	Handshake SubCategory = "Handshake"
	Broadcast SubCategory = "Broadcast"

	ExternalService SubCategory = "ExternalService"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	RoomID       ExtraKey = "RoomId"
	UserID       ExtraKey = "UserId"
	EventType    ExtraKey = "EventType"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
