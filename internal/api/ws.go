package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/middleware"
	"github.com/lalith-99/campuslink/internal/realtime"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// TopicAuthorizer decides whether a session may subscribe to a topic.
type TopicAuthorizer interface {
	AuthorizeTopic(ctx context.Context, session auth.Session, topic string) error
}

// WSHandler upgrades authenticated requests to WebSocket connections that
// stream realtime events.
type WSHandler struct {
	hub      *realtime.Hub
	topics   TopicAuthorizer
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, topics TopicAuthorizer, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		topics: topics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// clientCommand is what a client sends: {"action":"subscribe","topic":"team:<id>"}.
type clientCommand struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// serverReply acknowledges or rejects a command.
type serverReply struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Topic  string `json:"topic,omitempty"`
	Error  string `json:"error,omitempty"`
}

type wsClient struct {
	conn    *websocket.Conn
	sub     *realtime.Subscription
	replies chan serverReply
	session auth.Session
	topics  TopicAuthorizer
	logger  *zap.Logger
}

// Connect handles GET /v1/ws
func (h *WSHandler) Connect(c *gin.Context) {
	session := middleware.GetSession(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe()
	sub.Join(realtime.StudentTopic(session.StudentID))

	client := &wsClient{
		conn:    conn,
		sub:     sub,
		replies: make(chan serverReply, 8),
		session: session,
		topics:  h.topics,
		logger:  h.logger.With(zap.String("student_id", session.StudentID.String())),
	}
	client.logger.Debug("websocket connected")

	go client.writePump()
	client.readPump(c.Request.Context())
}

// readPump handles client commands until the connection fails, then closes
// the subscription, which in turn stops writePump.
func (c *wsClient) readPump(ctx context.Context) {
	defer func() {
		c.sub.Close()
		c.logger.Debug("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.reply(serverReply{Type: "error", Error: "malformed command"})
			continue
		}
		c.reply(c.handle(ctx, cmd))
	}
}

func (c *wsClient) handle(ctx context.Context, cmd clientCommand) serverReply {
	switch cmd.Action {
	case "subscribe":
		if err := c.topics.AuthorizeTopic(ctx, c.session, cmd.Topic); err != nil {
			return serverReply{Type: "error", Action: cmd.Action, Topic: cmd.Topic, Error: err.Error()}
		}
		c.sub.Join(cmd.Topic)
	case "unsubscribe":
		// The personal topic stays joined for the life of the connection.
		if cmd.Topic != realtime.StudentTopic(c.session.StudentID) {
			c.sub.Leave(cmd.Topic)
		}
	default:
		return serverReply{Type: "error", Action: cmd.Action, Error: "unknown action"}
	}
	return serverReply{Type: "ok", Action: cmd.Action, Topic: cmd.Topic}
}

// reply queues r for writePump, dropping it if the client is not reading.
func (c *wsClient) reply(r serverReply) {
	select {
	case c.replies <- r:
	default:
		c.logger.Warn("dropping websocket reply", zap.String("action", r.Action))
	}
}

// writePump is the only writer on conn.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.sub.C():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		case r := <-c.replies:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(r); err != nil {
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
