package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatroomgo/internal/config"
	"chatroomgo/internal/http/http_server"
	"chatroomgo/internal/metrics"
	"chatroomgo/internal/registry"
	"chatroomgo/internal/services/room"
	"chatroomgo/internal/ws"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Room registry, the sole owner of all live room state
	reg := registry.New()

	// 4. Prometheus collectors
	mtx := metrics.New(prometheus.DefaultRegisterer, func() float64 {
		return float64(reg.Len())
	})

	// 5. Room service: code allocation + session binding
	roomSvc := room.NewRoomService(reg, cfg.RoomCodeLength, mtx.RoomsCreatedTotal.Inc)

	// 6. WebSockets hub + broadcast engine
	hub := ws.NewHub()
	wsSrv := ws.NewWsServer(hub, reg, roomSvc, mtx)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, wsSrv, roomSvc)

	go func() {
		<-ctx.Done()
		if err := httpServer.Dispose(); err != nil {
			Log.Error("Failed to shut down HTTP server", zap.Error(err))
		}
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
