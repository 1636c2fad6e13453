package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"crm-backend/internal/middleware"
	"crm-backend/pkg/logger"
	notifyws "crm-backend/pkg/notifier/ws"
	"crm-backend/pkg/response"

	"go.uber.org/zap"
)

const (
	readLimit    = 512
	pongDeadline = 60 * time.Second
)

type SocketHandler struct {
	manager  *notifyws.Manager
	upgrader websocket.Upgrader
}

func NewSocketHandler(manager *notifyws.Manager) *SocketHandler {
	return &SocketHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer; the token already
			// authenticated the user.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and parks the connection in the manager until
// the client goes away. Clients only listen; inbound frames are drained to
// process control messages.
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn("ws upgrade failed", zap.String("userID", userID), zap.Error(err))
		return
	}

	c := h.manager.Add(userID, conn)
	defer h.manager.Remove(c)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongDeadline))
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return conn.SetReadDeadline(time.Now().Add(pongDeadline))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("ws read error", zap.String("userID", userID), zap.Error(err))
			}
			return
		}
		c.Touch()
	}
}
