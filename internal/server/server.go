package server

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/api/controller"
	"ctchen222/tictactoe-rooms/internal/player"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Hub is what the server needs from the room coordinator.
type Hub interface {
	Delivery
	Connect(ctx context.Context, p player.Peer) error
}

// Options configures the websocket endpoint.
type Options struct {
	AllowedOrigins []string
	MaxMessageSize int64
	SendBufferSize int
}

type Server struct {
	hub      Hub
	upgrader websocket.Upgrader
	rooms    *controller.RoomController
	opts     Options
	engine   *gin.Engine
}

func NewServer(h Hub, rooms *controller.RoomController, opts Options) *Server {
	policy := newOriginPolicy(opts.AllowedOrigins)
	s := &Server{
		hub:   h,
		rooms: rooms,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
	s.engine = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", s.handleWebSocket)
	router.GET("/rooms", s.rooms.List)
	router.GET("/rooms/:id", s.rooms.Get)
	router.GET("/healthz", s.rooms.Health)

	return router
}

// Engine returns the HTTP handler serving every route.
func (s *Server) Engine() http.Handler {
	return s.engine
}

// handleWebSocket upgrades the connection, gives it a fresh identity and
// registers it with the hub. It returns when the connection is closed.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	playerID := uuid.New().String()
	span.SetAttributes(attribute.String("player.id", playerID))

	client := newClient(player.NewPlayer(playerID, conn), s.opts.SendBufferSize, s.opts.MaxMessageSize)
	if err := s.hub.Connect(ctx, client); err != nil {
		slog.ErrorContext(ctx, "Could not register player", "player.id", playerID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not register player")
		client.close()
		return
	}

	go client.writePump(ctx)
	client.readPump(ctx, s.hub)
}
