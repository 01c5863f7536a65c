package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrix/httpapi"
	"connectrix/internal"
	"connectrix/observability"
	"connectrix/repositories"
	"connectrix/runtime"
	"connectrix/runtime/workers"
	"connectrix/services"
	"connectrix/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Monitoring
	monitor := observability.NewManager()
	chatRepository := repositories.NewChatRepository(db, log)
	notificationRepository := repositories.NewNotificationRepository(db, log)
	userRepository := repositories.NewUserRepository(db)

	// 4. Relay & Supervision
	registry := runtime.NewRegistry()
	relay := runtime.NewRelay(log, registry, chatRepository, notificationRepository,
		monitor, config.EventBufferSize)

	fanout := workers.NewEventFanout(log, registry, relay.Events(), config.SinkTimeout).
		Add(workers.NewPresenceSink(userRepository, log))
	health := workers.NewHealthMonitoringWorker(log, monitor, registry, config.MetricInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval).Add(fanout, health)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. HTTP & WebSocket Server
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewServer(log, relay, config.ConnectionBufferSize))

	api := httpapi.NewServer(log,
		services.NewChatService(chatRepository),
		services.NewAccountService(userRepository, config.AuthTokenDuration),
		notificationRepository,
		config.MessageLimit(), config.NotificationWindow, config.DevMode)
	api.Register(mux)

	if config.DebugInspect {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, monitor.AsMap)
		log.Info("Store inspector enabled", "port", config.DebugPort)
	}

	server := &http.Server{Addr: config.Addr(), Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", config.Addr(), "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
