package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chatroomgo/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 12 * time.Second
	pingPeriod     = 3 * time.Second // must be < pongWait
	handlerTimeout = 2 * time.Second

	defaultSendBuffer = 64
	defaultReadLimit  = 8 << 10
)

type Options struct {
	SendBuffer int
	ReadLimit  int64
}

type WsServer struct {
	hub      *Hub
	coord    *presence.Coordinator
	router   *Router
	upgrader websocket.Upgrader
	opts     Options
}

func NewWsServer(h *Hub, coord *presence.Coordinator, opts Options) *WsServer {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	srv := &WsServer{
		hub:    h,
		coord:  coord,
		router: NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		opts: opts,
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}

	// ─────────────────── Client connected ─────────────────────
	c := newClient(uuid.NewString(), rawConn, s.opts.SendBuffer)
	s.hub.Register(c)
	s.coord.Connect(c.id)
	zap.L().Info("ws.connected", zap.String("conn", c.id), zap.String("remote", ginCtx.ClientIP()))

	go s.writer(c)
	go s.reader(c)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(s.router, EventEnterRoom,
		func(ctx context.Context, cc *ConnContext, req EnterRoomRequest) error {
			return s.coord.EnterRoom(cc.ConnID, req.Name, req.Room)
		},
	)

	Register(s.router, EventMessage,
		func(ctx context.Context, cc *ConnContext, req MessageRequest) error {
			s.coord.ChatMessage(cc.ConnID, req.Name, req.Text)
			return nil
		},
	)

	Register(s.router, EventActivity,
		func(ctx context.Context, cc *ConnContext, req ActivityRequest) error {
			s.coord.ActivityPing(cc.ConnID, req.Name)
			return nil
		},
	)
}

func (s *WsServer) reader(c *client) {
	defer func() {
		s.coord.Disconnect(c.id)
		s.hub.Unregister(c)
		zap.L().Info("ws.disconnected", zap.String("conn", c.id))
	}()

	c.rawConn.SetReadLimit(s.opts.ReadLimit)
	_ = c.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	c.rawConn.SetPongHandler(func(string) error {
		return c.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{ConnID: c.id, Server: s}

	for {
		_, data, err := c.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("ws.read", zap.String("conn", c.id), zap.Error(err))
			}
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.hub.Send(c.id, EventError, ErrorBody{Error: ErrInvalidBody.Error()})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		err = s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			zap.L().Debug("ws.dispatch", zap.String("conn", c.id), zap.String("event", env.Event), zap.Error(err))
			s.hub.Send(c.id, EventError, ErrorBody{Error: err.Error()})
		}
	}
}

// writer owns every write on the socket, including keepalive pings.
func (s *WsServer) writer(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.rawConn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.rawConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.rawConn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Debug("ws.write", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
