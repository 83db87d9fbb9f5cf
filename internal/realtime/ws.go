package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	maxMessageSize = 1024

	textMessage = websocket.TextMessage
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// wsConn adapts a gorilla connection to the hub's Conn interface, applying a
// write deadline per message.
type wsConn struct {
	conn *websocket.Conn
}

func (w wsConn) WriteMessage(messageType int, data []byte) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(messageType, data)
}

func (w wsConn) Close() error { return w.conn.Close() }

// HandleWebSocket upgrades the request and runs the connection's read loop.
// Inbound frames are dispatched through the hub; the loop exits on any read
// error and cleans the client out of every channel.
func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logf("WebSocket upgrade error: %v", err)
			return
		}

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		client := h.Register(wsConn{conn: conn})
		defer h.Disconnect(client)

		go h.pingLoop(conn, client)

		ctx := c.Request.Context()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
					h.logf("WebSocket error: %v", err)
				}
				return
			}
			h.HandleMessage(ctx, client, raw)
		}
	}
}

// pingLoop keeps the connection alive until the client is torn down.
func (h *Hub) pingLoop(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.dropClient(client, err)
				return
			}
		case <-client.done:
			return
		}
	}
}
