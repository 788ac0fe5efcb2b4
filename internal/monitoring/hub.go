package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	"stock-backend/internal/logging"
	"stock-backend/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	broadcastQueue = 256
)

// StockEvent announces a committed change to one product's stock
type StockEvent struct {
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Delta        decimal.Decimal `json:"delta"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Created      bool            `json:"created"`
	InvoiceType  string          `json:"invoice_type"`
	InvoiceID    int             `json:"invoice_id"`
	Operation    string          `json:"operation"`
	Timestamp    time.Time       `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans committed stock events out to websocket subscribers
type Hub struct {
	logger     *logging.Logger
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan StockEvent
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:    logger.WithComponent("stock_feed"),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan StockEvent, broadcastQueue),
	}
}

// Publish queues events for delivery. Events are dropped when the queue is full;
// subscribers can always re-read products over HTTP.
func (h *Hub) Publish(events ...StockEvent) {
	for _, ev := range events {
		select {
		case h.broadcast <- ev:
		default:
			h.logger.Warn("stock feed queue full, dropping event", "product_id", ev.ProductID)
		}
	}
}

// Run delivers queued events until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.broadcast:
			h.each(func(conn *websocket.Conn) error {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				return conn.WriteJSON(ev)
			})
		case <-ticker.C:
			h.each(func(conn *websocket.Conn) error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
		}
	}
}

// ServeWS upgrades the request and registers the connection as a subscriber
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()
	metrics.StockFeedClients.Inc()

	go h.readPump(conn)
}

// ClientCount reports connected subscribers
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}

// readPump drains client frames so pongs and close messages are processed
func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.remove(conn)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) each(send func(*websocket.Conn) error) {
	h.clientsMux.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		if err := send(conn); err != nil {
			dead = append(dead, conn)
		}
	}
	h.clientsMux.Unlock()

	for _, conn := range dead {
		h.remove(conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMux.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.clientsMux.Unlock()

	if ok {
		metrics.StockFeedClients.Dec()
		conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMux.Unlock()

	for _, conn := range conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		h.remove(conn)
	}
}
