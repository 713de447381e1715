/**
* Name: 			hub.go
* Description: 		대시보드 실시간 리뷰 피드 (WebSocket)
* Workflow: 		클라이언트 등록/해제, 저장된 행 브로드캐스트
 */

package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"CanteenFeedback/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

type Event struct {
	Type      string           `json:"type"`
	Table     string           `json:"table"`
	Row       models.StoredRow `json:"row"`
	Timestamp time.Time        `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans stored rows out to connected dashboard viewers. Slow viewers are
// dropped rather than blocking a submission.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	log        *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debugf("Hub.Run(): viewer %s connected", c.conn.RemoteAddr())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debugf("Hub.Run(): viewer %s disconnected", c.conn.RemoteAddr())

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RowStored queues a row for broadcast. It never blocks.
func (h *Hub) RowStored(table string, row models.StoredRow) {
	data, err := json.Marshal(Event{Type: "row_stored", Table: table, Row: row, Timestamp: time.Now()})
	if err != nil {
		h.log.Errorf("Hub.RowStored(): failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warnf("Hub.RowStored(): broadcast queue full, dropping row for %s", table)
	}
}

// Serve registers conn and pumps events to it until the peer goes away.
// It blocks; the caller's handler returns when it does.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go writePump(c)
	readPump(c)

	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Viewers only listen; reads exist to notice close frames and pongs.
func readPump(c *client) {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
