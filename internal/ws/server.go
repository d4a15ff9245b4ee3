package ws

import (
	"context"
	"time"

	"chatroomgo/internal/metrics"
	"chatroomgo/internal/registry"
	"chatroomgo/internal/services/room"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 3 * time.Second

	// Transport-level frame cap. The core puts no length limit on message
	// bodies; this only bounds what a single websocket read will buffer.
	maxMessageBytes = 1 << 20
)

// ConnContext carries per-connection state into event handlers.
type ConnContext struct {
	Session *room.Session
	Conn    *clientConn
	Server  *WsServer
}

type WsServer struct {
	hub     *Hub
	router  *Router
	reg     *registry.Registry
	roomSvc room.IRoomService
	mtx     *metrics.Metrics // may be nil
}

func NewWsServer(h *Hub, reg *registry.Registry, roomSvc room.IRoomService, mtx *metrics.Metrics) *WsServer {
	srv := &WsServer{
		hub:     h,
		router:  NewRouter(),
		reg:     reg,
		roomSvc: roomSvc,
		mtx:     mtx,
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

// Handle upgrades the connection and runs the per-connection lifecycle. The
// session is bound from the query string; a client that reaches the transport
// layer without completing the room-selection flow stays unjoined.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	sess := &room.Session{
		RoomCode:    ginCtx.Query("room"),
		DisplayName: ginCtx.Query("name"),
	}

	rawConn, err := websocket.Accept(
		ginCtx.Writer, ginCtx.Request,
		&websocket.AcceptOptions{InsecureSkipVerify: true}, // dev-only
	)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageBytes)

	wsConn := &clientConn{id: uuid.NewString(), rawConn: rawConn}
	joined := s.connect(sess, wsConn)

	go s.reader(sess, wsConn, joined)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Connection lifecycle
// ---------------------------------------------------------------------------

// connect joins the session's room and returns whether the connection is a
// registered member. Unjoined connections stay open; their messages are
// dropped by the message handler.
func (s *WsServer) connect(sess *room.Session, conn *clientConn) bool {
	if sess.RoomCode == "" || sess.DisplayName == "" {
		zap.L().Debug("ws.connect_unbound", zap.String("conn", conn.id))
		return false
	}
	if !s.reg.Exists(sess.RoomCode) {
		// Room vanished between room selection and socket connection.
		zap.L().Debug("ws.connect_room_vanished",
			zap.String("conn", conn.id), zap.String("room", sess.RoomCode))
		return false
	}

	s.hub.Join(sess.RoomCode, conn)
	s.broadcastEvent(sess.RoomCode, EventRoomMessage, registry.Message{
		SenderName: sess.DisplayName,
		Body:       noticeEntered,
	})
	n, ok := s.reg.IncrementMembers(sess.RoomCode)
	if !ok {
		// Room emptied concurrently after the existence check; undo the
		// subscription and treat the connect as unjoined.
		s.hub.Leave(sess.RoomCode, conn)
		zap.L().Debug("ws.connect_room_vanished",
			zap.String("conn", conn.id), zap.String("room", sess.RoomCode))
		return false
	}
	if s.mtx != nil {
		s.mtx.ConnectionsActive.Inc()
	}
	zap.L().Info("ws.joined",
		zap.String("conn", conn.id),
		zap.String("room", sess.RoomCode),
		zap.String("name", sess.DisplayName),
		zap.Int("members", n))

	// History snapshot, to the new connection only.
	if err := s.pushHistory(sess.RoomCode, conn); err != nil {
		zap.L().Warn("ws.history_push", zap.Error(err))
	}
	return true
}

// disconnect runs full cleanup for a closed connection. It is reached from
// the reader's defer, so it also covers abrupt transport-level closes.
func (s *WsServer) disconnect(sess *room.Session, conn *clientConn, joined bool) {
	s.hub.Leave(sess.RoomCode, conn)
	_ = conn.rawConn.CloseNow()

	if !joined {
		return
	}
	if s.mtx != nil {
		s.mtx.ConnectionsActive.Dec()
	}
	n, ok := s.reg.DecrementMembers(sess.RoomCode)
	if !ok {
		return
	}
	// Deliberately after the decrement: when the room was just deleted the
	// notice still goes to whatever connections remain in the group.
	s.broadcastEvent(sess.RoomCode, EventRoomMessage, registry.Message{
		SenderName: sess.DisplayName,
		Body:       noticeLeft,
	})
	zap.L().Info("ws.left",
		zap.String("conn", conn.id),
		zap.String("room", sess.RoomCode),
		zap.String("name", sess.DisplayName),
		zap.Int("members", n))
}

// ---------------------------------------------------------------------------
//  Broadcast engine
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 rooms/message -------------------------------------------------------
	Register(
		s.router,
		EventRoomMessage,
		func(ctx context.Context, cc *ConnContext, req ChatMessageBody) (AckBody, error) {
			cc.Server.onMessage(cc.Session, req.Body)
			return AckBody{}, nil
		},
	)
}

// onMessage fans a chat line out to the room's group and appends it to the
// registry history. A message referencing a room that no longer exists is
// dropped silently; the sender sees no error.
func (s *WsServer) onMessage(sess *room.Session, payload string) {
	if !s.reg.Exists(sess.RoomCode) {
		zap.L().Debug("ws.message_dropped", zap.String("room", sess.RoomCode))
		return
	}
	msg := registry.Message{SenderName: sess.DisplayName, Body: payload}
	data, err := envelopeBytes(EventRoomMessage, msg)
	if err != nil {
		zap.L().Warn("ws.envelope", zap.Error(err))
		return
	}
	// The append rides inside the room's ordering section so that history
	// order and broadcast order cannot diverge under concurrent senders.
	s.hub.Dispatch(sess.RoomCode, data, func() {
		s.reg.AppendMessage(sess.RoomCode, msg)
	})
	if s.mtx != nil {
		s.mtx.MessagesTotal.Inc()
	}
}

func (s *WsServer) broadcastEvent(roomCode, event string, body any) {
	data, err := envelopeBytes(event, body)
	if err != nil {
		zap.L().Warn("ws.envelope", zap.Error(err))
		return
	}
	s.hub.Broadcast(roomCode, data)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) pushHistory(roomCode string, conn *clientConn) error {
	return conn.writeJSON(gin.H{
		"event": EventRoomHistory,
		"body":  HistoryBody{Messages: s.roomSvc.History(roomCode)},
	})
}

func (s *WsServer) reader(sess *room.Session, conn *clientConn, joined bool) {
	defer s.disconnect(sess, conn, joined)

	cc := &ConnContext{Session: sess, Conn: conn, Server: s}

	for {
		var env Envelope
		if err := wsjson.Read(context.Background(), conn.rawConn, &env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: err.Error()},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := conn.rawConn.Ping(ctx)
		cancel()
		if err != nil {
			_ = conn.rawConn.Close(websocket.StatusNormalClosure, "ping timeout")
			return
		}
	}
}
