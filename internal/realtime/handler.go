package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub  *Hub
	auth *middleware.Authenticator
}

func NewHandler(hub *Hub, auth *middleware.Authenticator) *Handler {
	return &Handler{hub: hub, auth: auth}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", h.Serve)
}

// Serve authenticates before upgrading, then subscribes the connection
// to the caller's analytics events.
// GET /api/v1/ws?token=...
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = middleware.TokenFromRequest(c)
	}

	userID, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, userID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
