package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dailymood/mood-tracker/internal/infrastructure/realtime"
)

const pingInterval = 25 * time.Second

// RealtimeHandler upgrades authenticated requests to a WebSocket that
// receives the caller's record events.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bearer token is checked before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Stream handles GET /v1/ws.
//
// @Summary      Live record events
// @Description  Upgrades to a WebSocket. Each daily_record.created or daily_record.updated event of the caller is sent as a JSON text frame. Browsers may pass the token as the access_token query parameter.
// @Tags         realtime
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Bearer token for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /v1/ws [get]
func (h *RealtimeHandler) Stream(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return nil
	}

	client := realtime.NewClient(userID, conn)
	h.hub.Register(client)
	h.log.Debug().Str("user_id", userID).Msg("websocket client connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		h.hub.Unregister(client)
		h.log.Debug().Str("user_id", userID).Msg("websocket client disconnected")
	}()

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := client.Ping(); err != nil {
					h.hub.Unregister(client)
					return
				}
			}
		}
	}()

	// Inbound frames are ignored; the read loop only detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
