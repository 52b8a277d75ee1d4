package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"prescription-reminder/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	inboxSize = 50

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	clientBuffer   = 32
)

// Toast es el banner in-app: se guarda en el inbox y se empuja por websocket.
type Toast struct {
	ID        string    `json:"id"`
	Message   Message   `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hub guarda los últimos toasts y los difunde a los clientes websocket conectados.
type Hub struct {
	log logger.Logger
	now func() time.Time

	mu      sync.RWMutex
	inbox   []Toast
	clients map[*wsClient]struct{}

	upgrader websocket.Upgrader
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:     log.With(map[string]any{"component": "toast_hub"}),
		now:     time.Now,
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// servicio local de un solo usuario
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Show guarda el toast y lo difunde. Nunca bloquea: un cliente lento se desconecta.
func (h *Hub) Show(msg Message) Toast {
	t := Toast{ID: uuid.NewString(), Message: msg, CreatedAt: h.now()}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.inbox = append(h.inbox, t)
	if len(h.inbox) > inboxSize {
		h.inbox = append([]Toast(nil), h.inbox[len(h.inbox)-inboxSize:]...)
	}

	for c := range h.clients {
		select {
		case c.send <- t:
		default:
			h.dropLocked(c)
		}
	}
	return t
}

// Recent devuelve hasta limit toasts, el más nuevo primero.
func (h *Hub) Recent(limit int) []Toast {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.inbox) {
		limit = len(h.inbox)
	}
	out := make([]Toast, 0, limit)
	for i := len(h.inbox) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.inbox[i])
	}
	return out
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close desconecta a todos los clientes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// ServeWS hace el upgrade y bombea toasts hasta que el cliente se va o ctx termina.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió con el error HTTP
		h.log.Warn("websocket upgrade failed", map[string]any{"error": err})
		return
	}

	c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan Toast, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info("toast client connected", map[string]any{"client_id": c.id, "total_clients": total})

	go c.writePump(h.log)
	c.readPump(ctx, h.log)

	h.mu.Lock()
	h.dropLocked(c)
	total = len(h.clients)
	h.mu.Unlock()
	h.log.Info("toast client disconnected", map[string]any{"client_id": c.id, "total_clients": total})
}

// dropLocked requiere mu.
func (h *Hub) dropLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan Toast
}

// readPump sólo consume pings/close; el cliente no envía datos.
func (c *wsClient) readPump(ctx context.Context, log logger.Logger) {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read error", map[string]any{"client_id": c.id, "error": err})
			}
			return
		}
	}
}

func (c *wsClient) writePump(log logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case t, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(t)
			if err != nil {
				log.Error("marshal toast failed", map[string]any{"error": err})
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
