package socketio

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	socket "github.com/zishang520/socket.io/socket"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/message"
	"github.com/barterskills/barterskills-server-go/internal/features/user"
	jwtutil "github.com/barterskills/barterskills-server-go/internal/utils/jwt"
)

const (
	globalRoom       = "global"
	maxMessageLength = 2000
	sendCooldown     = time.Second
)

type userChatActivity struct {
	lastMessageAt time.Time
}

// Server wraps the Socket.IO server with global chat functionality.
type Server struct {
	io        *socket.Server
	db        *gorm.DB
	logger    *slog.Logger
	jwtSecret string

	heartbeatStop chan struct{}
	heartbeatWG   sync.WaitGroup

	connMutex   sync.RWMutex
	connections map[string]*socket.Socket

	activityMu   sync.Mutex
	userActivity map[string]*userChatActivity
}

// NewServer creates a new Socket.IO chat server.
func NewServer(db *gorm.DB, logger *slog.Logger, jwtSecret string) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:           server,
		db:           db,
		logger:       logger,
		jwtSecret:    jwtSecret,
		connections:  make(map[string]*socket.Socket),
		userActivity: make(map[string]*userChatActivity),
	}

	s.setupEventHandlers()
	s.startHeartbeat()

	return s, nil
}

// GetHandler returns the HTTP handler for Socket.IO.
func (s *Server) GetHandler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close shuts down the Socket.IO server.
func (s *Server) Close() error {
	if stop := s.heartbeatStop; stop != nil {
		close(stop)
		s.heartbeatWG.Wait()
		s.heartbeatStop = nil
	}

	done := make(chan struct{})
	s.io.Close(func() {
		close(done)
	})

	<-done
	return nil
}

// setupEventHandlers configures all Socket.IO event handlers.
func (s *Server) setupEventHandlers() {
	s.io.Use(s.connectionMiddleware)
	s.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			s.logger.Error("unexpected connection payload", slog.Any("payload", args))
			return
		}
		s.handleConnection(sock)
	})
}

func (s *Server) connectionMiddleware(sock *socket.Socket, next func(*socket.ExtendedError)) {
	token := s.extractToken(sock)
	if token == "" {
		s.logger.Warn("socket connection rejected: missing token")
		next(socket.NewExtendedError("missing authentication token", map[string]any{"code": "MISSING_TOKEN"}))
		return
	}

	claims, err := jwtutil.VerifyToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Warn("socket connection rejected: invalid token", slog.String("error", err.Error()))
		next(socket.NewExtendedError("invalid token", map[string]any{"code": "INVALID_TOKEN"}))
		return
	}

	var userData user.User
	if err := s.db.First(&userData, "id = ?", claims.UserID).Error; err != nil {
		s.logger.Warn("socket connection rejected: user not found", slog.Any("userId", claims.UserID), slog.String("error", err.Error()))
		next(socket.NewExtendedError("user not found", map[string]any{"code": "USER_NOT_FOUND"}))
		return
	}

	sock.SetData(&userData)
	next(nil)
}

func (s *Server) handleConnection(sock *socket.Socket) {
	userData := s.getUserFromSocket(sock)
	if userData == nil {
		s.logger.Error("connection established without user context")
		sock.Disconnect(true)
		return
	}

	s.connMutex.Lock()
	s.connections[s.socketID(sock)] = sock
	s.connMutex.Unlock()

	s.logger.Info("WebSocket connected",
		slog.String("user", userData.Username),
		slog.String("userId", userData.ID.String()),
		slog.String("connId", string(sock.Id())),
	)

	confirmData := map[string]any{
		"userId":    userData.ID.String(),
		"username":  userData.Username,
		"fullName":  userData.FullName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := sock.Emit("connectionConfirmed", confirmData); err != nil {
		s.logger.Warn("failed to emit connection confirmation", slog.String("error", err.Error()))
	}

	sock.Join(userRoom(userData.ID.String()))
	sock.Join(socket.Room(globalRoom))

	s.registerEventHandlers(sock)
}

func (s *Server) registerEventHandlers(sock *socket.Socket) {
	sock.On("sendGlobalMessage", func(args ...any) {
		payload := mapArg(args)
		if payload == nil {
			s.emitError(sock, "INVALID_INPUT", "message payload is required")
			return
		}
		s.handleGlobalMessage(sock, payload)
	})

	sock.On("typing", func(args ...any) {
		s.handleTyping(sock)
	})

	sock.On("pong", func(args ...any) {
		if len(args) > 0 {
			s.logger.Debug("pong received", slog.Any("value", args[0]))
		}
	})

	sock.On("disconnect", func(args ...any) {
		reason := "client"
		if len(args) > 0 {
			if r, ok := args[0].(string); ok {
				reason = r
			}
		}
		s.handleDisconnect(sock, reason)
	})
}

func (s *Server) handleGlobalMessage(sock *socket.Socket, payload map[string]any) {
	userData := s.getUserFromSocket(sock)
	if userData == nil {
		s.emitError(sock, "UNAUTHORIZED", "user context missing")
		return
	}

	content := strings.TrimSpace(stringValue(payload, "message"))
	if content == "" {
		s.emitError(sock, "INVALID_INPUT", "message is required")
		return
	}
	if len(content) > maxMessageLength {
		content = content[:maxMessageLength]
	}

	if !s.allowSend(userData.ID.String()) {
		s.emitError(sock, "RATE_LIMITED", "you are sending messages too quickly")
		return
	}

	saved, err := message.SaveGlobalMessage(s.db, userData.ID, userData.Username, content)
	if err != nil {
		s.logger.Error("failed to persist chat message",
			slog.String("userId", userData.ID.String()),
			slog.String("error", err.Error()),
		)
		s.emitError(sock, "SEND_FAILED", "failed to send message")
		return
	}

	chatMessage := map[string]any{
		"id":         saved.ID.String(),
		"senderId":   saved.SenderID.String(),
		"senderName": saved.SenderName,
		"message":    saved.Content,
		"timestamp":  saved.CreatedAt.UTC().Format(time.RFC3339),
	}

	// Broadcast through io.To() so the sender receives its own message too.
	if err := s.io.To(socket.Room(globalRoom)).Emit("globalMessageReceived", chatMessage); err != nil {
		s.logger.Warn("failed to broadcast chat message", slog.String("error", err.Error()))
	}
}

func (s *Server) handleTyping(sock *socket.Socket) {
	userData := s.getUserFromSocket(sock)
	if userData == nil {
		return
	}

	if err := sock.To(socket.Room(globalRoom)).Emit("userTyping", map[string]any{
		"userId":   userData.ID.String(),
		"username": userData.Username,
	}); err != nil {
		s.logger.Debug("failed to broadcast typing", slog.String("error", err.Error()))
	}
}

var _ message.DirectNotifier = (*Server)(nil)

// NotifyDirectMessage pushes a direct-message event to the recipient's room
// when they are connected.
func (s *Server) NotifyDirectMessage(recipientID string, payload map[string]any) {
	if err := s.io.To(userRoom(recipientID)).Emit("directMessageReceived", payload); err != nil {
		s.logger.Debug("failed to push direct message", slog.String("error", err.Error()))
	}
}

func (s *Server) handleDisconnect(sock *socket.Socket, reason string) {
	userData := s.getUserFromSocket(sock)

	s.connMutex.Lock()
	delete(s.connections, s.socketID(sock))
	s.connMutex.Unlock()

	if userData == nil {
		return
	}

	s.logger.Info("WebSocket disconnected",
		slog.String("user", userData.Username),
		slog.String("userId", userData.ID.String()),
		slog.String("reason", reason),
	)
}

func (s *Server) allowSend(userID string) bool {
	now := time.Now()

	s.activityMu.Lock()
	defer s.activityMu.Unlock()

	activity := s.userActivity[userID]
	if activity == nil {
		activity = &userChatActivity{}
		s.userActivity[userID] = activity
	}

	if !activity.lastMessageAt.IsZero() && now.Sub(activity.lastMessageAt) < sendCooldown {
		return false
	}

	activity.lastMessageAt = now
	return true
}

func (s *Server) startHeartbeat() {
	s.heartbeatStop = make(chan struct{})
	s.heartbeatWG.Add(1)

	go func() {
		defer s.heartbeatWG.Done()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sendHeartbeat()
			case <-s.heartbeatStop:
				return
			}
		}
	}()
}

func (s *Server) sendHeartbeat() {
	timestamp := time.Now().Unix()

	s.connMutex.RLock()
	defer s.connMutex.RUnlock()

	for id, sock := range s.connections {
		if err := sock.Emit("ping", timestamp); err != nil {
			s.logger.Debug("heartbeat emit failed", slog.String("connId", id), slog.String("error", err.Error()))
		}
	}
}

func (s *Server) getUserFromSocket(sock *socket.Socket) *user.User {
	if sock == nil {
		return nil
	}
	if data, ok := sock.Data().(*user.User); ok {
		return data
	}
	return nil
}

func (s *Server) emitError(sock *socket.Socket, code, message string) {
	if sock == nil {
		return
	}
	if err := sock.Emit("error", map[string]any{
		"code":    code,
		"message": message,
	}); err != nil {
		s.logger.Debug("failed to emit error", slog.String("error", err.Error()))
	}
}

func (s *Server) extractToken(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}

	if conn := sock.Conn(); conn != nil {
		if ctx := conn.Request(); ctx != nil {
			if req := ctx.Request(); req != nil {
				if token := req.URL.Query().Get("token"); token != "" {
					return token
				}
			}
			if query := ctx.Query(); query != nil {
				if token, ok := query.Get("token"); ok && token != "" {
					return token
				}
			}
		}
	}

	if hs := sock.Handshake(); hs != nil {
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return token
			}
		}
		if authMap, ok := hs.Auth.(map[string]any); ok {
			if token, ok := authMap["token"].(string); ok {
				return token
			}
		}
	}

	return ""
}

func (s *Server) socketID(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}
	return string(sock.Id())
}

func stringValue(payload map[string]any, key string) string {
	if val, ok := payload[key]; ok {
		switch v := val.(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		case []byte:
			return string(v)
		}
	}
	return ""
}

func mapArg(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	if payload, ok := args[0].(map[string]any); ok {
		return payload
	}
	return nil
}

func userRoom(userID string) socket.Room {
	return socket.Room("user_" + userID)
}
