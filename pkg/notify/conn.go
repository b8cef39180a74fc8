package notify

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

// NewUpgrader accepts the listed origins, or any origin when the list is empty or "*".
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Conn serializes writes to a websocket and keeps it alive with pings.
type Conn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	stopCh chan struct{}
	once   sync.Once
}

func NewConn(ws *websocket.Conn) *Conn {
	c := &Conn{ws: ws, stopCh: make(chan struct{})}
	ws.SetReadLimit(maxMessage)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.pingLoop()
	return c
}

func (c *Conn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// ReadJSON blocks for the next client message.
func (c *Conn) ReadJSON(v interface{}) error {
	return c.ws.ReadJSON(v)
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.stopCh
}

func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.mu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// IsClosed reports whether err is a normal end of the session.
func IsClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
