package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"mill-ops-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 30 * time.Second
	maxFrameBytes = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// wsConn adapts a gorilla connection to the realtime transport interfaces.
// Write deadlines make a write to a dead peer fail instead of hanging, and
// the heartbeat keeps NAT/proxy paths from reaping idle connections.
type wsConn struct {
	conn     *websocket.Conn
	done     chan struct{}
	stopOnce sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	w := &wsConn{conn: conn, done: make(chan struct{})}
	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go w.pingLoop()
	return w
}

func (w *wsConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				// ping failed; reader loop will exit on next error
				return
			}
		}
	}
}

// WriteText implements realtime.Conn. Concurrent callers are serialized by
// the registry entry owning this handle.
func (w *wsConn) WriteText(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage implements realtime.ReadConn, skipping non-text frames.
func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		typ, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (w *wsConn) Close() error {
	w.stopOnce.Do(func() { close(w.done) })
	return w.conn.Close()
}

// WSHandler exposes the websocket accept endpoints.
type WSHandler struct {
	lifecycle *realtime.Lifecycle
}

// NewWSHandler creates a websocket handler over the shared lifecycle.
func NewWSHandler(lifecycle *realtime.Lifecycle) *WSHandler {
	return &WSHandler{lifecycle: lifecycle}
}

// Notifications handles GET /ws, the general push channel. Connections here
// are anonymous broadcast-only slots: they receive broadcasts and global
// pushes but have no identity of their own.
func (h *WSHandler) Notifications(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	h.lifecycle.Serve("", newWSConn(conn))
}

// Chat handles GET /ws/chat/:employeeId, the identified chat channel. JWT
// middleware runs first; the path identity must match the authenticated user.
func (h *WSHandler) Chat(c *gin.Context) {
	userID := c.GetString("user_id")
	employeeID := c.Param("employeeId")
	if userID == "" || employeeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "employee id does not match the authenticated user"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}
	h.lifecycle.Serve(employeeID, newWSConn(conn))
}
