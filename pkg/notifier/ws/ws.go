package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait bounds each broadcast write so one slow client cannot stall
// the publish for others.
const writeWait = 5 * time.Second

// Connection wraps websocket.Conn with metadata. gorilla permits only one
// concurrent writer per connection, so every data write goes through
// writeMu; lastSeen is touched from the read goroutine and checked by the
// heartbeat, hence atomic.
type Connection struct {
	Conn     *websocket.Conn
	UserID   string
	writeMu  sync.Mutex
	lastSeen atomic.Int64
}

// Touch records activity on the connection.
func (c *Connection) Touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Connection) idleSince() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Connection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

// Manager tracks every connected session. Publish fans an event out to all
// of them: delivery is at-most-once and a failed write evicts the
// connection without blocking the rest of the broadcast.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userID -> set of connections
}

func NewManager() *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
	}
}

// Add registers a connection for a user
func (m *Manager) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID}
	c.Touch()

	m.mu.Lock()
	if _, ok := m.connections[userID]; !ok {
		m.connections[userID] = make(map[*Connection]struct{})
	}
	m.connections[userID][c] = struct{}{}
	total := len(m.connections[userID])
	m.mu.Unlock()

	logger.L().Info("ws connected", zap.String("userID", userID), zap.Int("sessions", total))
	return c
}

// Remove disconnects and removes a connection
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	_ = c.Conn.Close()
	logger.L().Info("ws disconnected", zap.String("userID", c.UserID))
}

// Publish sends an event to every connected session. No delivery
// confirmation: a disconnected client simply misses it. Safe for
// concurrent callers; each connection serialises its own writes.
func (m *Manager) Publish(event domain.WSEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conns := range m.connections {
		for c := range conns {
			if err := c.writeJSON(event); err != nil {
				logger.L().Warn("ws publish failed",
					zap.String("userID", c.UserID), zap.Error(err))
				go m.Remove(c)
			}
		}
	}
}

// Heartbeat pings all connections periodically to keep them alive
func (m *Manager) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		m.mu.RLock()
		for _, conns := range m.connections {
			for c := range conns {
				if time.Since(c.idleSince()) > 2*interval {
					go m.Remove(c)
					continue
				}
				_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			}
		}
		m.mu.RUnlock()
	}
}
