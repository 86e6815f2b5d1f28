package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"LevelBias/internal/domain/models"
	applogger "LevelBias/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans freshly computed prediction results out to WebSocket
// subscribers. Egress only: clients never send anything we act on.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	l       *applogger.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(l *applogger.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), l: l}
}

// RegisterRoutes mounts the subscription endpoint.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/predictions", h.Serve)
}

// Serve upgrades the connection and streams results until the client
// disconnects.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		if h.l != nil {
			h.l.Warn("ws upgrade failed", applogger.Error(err))
		}
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.l != nil {
		h.l.Info("ws client connected",
			applogger.String("remote", conn.RemoteAddr().String()),
			applogger.Int("clients", n),
		)
	}

	go h.writeLoop(cl)
	h.readLoop(cl) // blocks until close; discards inbound frames
	return nil
}

// Broadcast implements repository.Broadcaster. Slow clients are dropped
// rather than allowed to stall the rest.
func (h *Hub) Broadcast(r *models.PredictionResult) {
	b, err := json.Marshal(r)
	if err != nil {
		if h.l != nil {
			h.l.Error("ws broadcast marshal failed", applogger.Error(err))
		}
		return
	}

	h.mu.Lock()
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			delete(h.clients, cl)
			close(cl.send)
			if h.l != nil {
				h.l.Warn("ws client dropped, send buffer full",
					applogger.String("remote", cl.conn.RemoteAddr().String()),
				)
			}
		}
	}
	h.mu.Unlock()
}

// Clients returns the current subscriber count.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case b, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readLoop(cl *client) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[cl]; ok {
			delete(h.clients, cl)
			close(cl.send)
		}
		h.mu.Unlock()
		cl.conn.Close()
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
