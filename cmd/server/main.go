package main

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/api/controller"
	"ctchen222/tictactoe-rooms/internal/config"
	"ctchen222/tictactoe-rooms/internal/db"
	"ctchen222/tictactoe-rooms/internal/events"
	"ctchen222/tictactoe-rooms/internal/hub"
	"ctchen222/tictactoe-rooms/internal/logger"
	"ctchen222/tictactoe-rooms/internal/registry"
	"ctchen222/tictactoe-rooms/internal/server"
	"ctchen222/tictactoe-rooms/internal/telemetry"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so the log bridge picks up the provider.
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Lifecycle events go to Redis when configured.
	var sink events.Publisher = events.NoopPublisher{}
	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		sink = events.NewRedisPublisher(rdb, cfg.Redis.Channel)
		slog.InfoContext(ctx, "Publishing room events to redis", "redis.addr", cfg.Redis.Addr, "event.channel", cfg.Redis.Channel)
	}
	dispatcher := events.NewDispatcher(sink, cfg.Hub.EventQueueSize)

	// Create hub
	h := hub.NewHub(registry.New(), dispatcher, hub.Options{
		QueueSize:        cfg.Hub.QueueSize,
		RejectionReplies: cfg.Hub.RejectionReplies,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		h.Run(ctx)
	}()

	// Create the Gin-based server
	srv := server.NewServer(h, controller.NewRoomController(h), server.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxMessageSize: cfg.HTTP.MaxMessageSize,
		SendBufferSize: cfg.Hub.SendBufferSize,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	wg.Wait()

	slog.Info("Server exiting")
}
