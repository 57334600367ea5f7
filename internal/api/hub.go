package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/foundrysim/tradefloor/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one websocket connection. Its uuid is the connection identity
// that positions and orders are keyed by: a stable per-connection token
// rather than a proxy address, since a reverse proxy can put many
// connections behind the same remote address.
type Client struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	registry *session.Registry
	log      *zap.Logger

	sess *session.Session // set once bound via admin_create_game/player_join
}

// Send implements session.Sender. A full send buffer means this
// connection is not draining fast enough; the message is dropped rather
// than blocking the session's worker goroutine.
func (c *Client) Send(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("marshal outbound message failed", zap.Error(err))
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *Client) bind(sess *session.Session) {
	c.sess = sess
}

func (c *Client) boundSession() *session.Session {
	return c.sess
}

func (c *Client) readPump() {
	defer func() {
		if c.sess != nil {
			c.sess.Unregister(c.id)
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("read error", zap.Error(err))
			}
			return
		}
		c.dispatch(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
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

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, 256),
		registry: s.registry,
		log:      s.log,
	}

	go client.writePump()
	go client.readPump()
}
