package relay

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/huddle-rtc/huddle/internal/infrastructure/configs"
	"github.com/huddle-rtc/huddle/internal/infrastructure/json"
	"github.com/huddle-rtc/huddle/internal/infrastructure/logging"
	"github.com/huddle-rtc/huddle/internal/infrastructure/ws"
)

// Handler upgrades the transport handshake and binds the connection session.
// Identity (userId, userName) is supplied by the boundary layer before the
// core is invoked; the relay trusts it as-is.
type Handler struct {
	router   *ws.Router
	wsCfg    configs.WSConfig
	logger   logging.Logger
	upgrader websocket.Upgrader
}

func NewHandler(router *ws.Router, httpCfg configs.HTTPConfig, wsCfg configs.WSConfig, logger logging.Logger) *Handler {
	return &Handler{
		router: router,
		wsCfg:  wsCfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			EnableCompression: wsCfg.EnableCompression,
			CheckOrigin:       originChecker(httpCfg.AllowedOrigins),
		},
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("roomId")
	userID := q.Get("userId")
	userName := q.Get("userName")

	if roomID == "" || userID == "" || userName == "" {
		json.WriteValidationError(w, errors.New("roomId, userId and userName query parameters are required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Transport, logging.Handshake, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.RoomID:       roomID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, userID, roomID, userName,
		h.wsCfg.PingInterval, h.wsCfg.WriteTimeout, h.wsCfg.SendBuffer, h.wsCfg.MaxPayloadSize)

	go client.WritePump()
	go client.ReadPump(h.router)

	h.logger.Info(logging.Transport, logging.Handshake, "connection established", map[logging.ExtraKey]any{
		logging.RoomID: roomID,
		logging.UserID: userID,
	})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := set[origin]
		return ok
	}
}
