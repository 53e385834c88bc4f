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

	"chat-relay/infrastructure/rest"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
	"chat-relay/storage"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := observability.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Full-text index (bluge)
	indexWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.SearchIndexPath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = indexWriter.Close()
	}()

	// 4. Repositories & Engine
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	searchRepository := repositories.NewSearchRepository(indexWriter, log, config.SearchLimit)
	userRepository := repositories.NewUserRepository(db)

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	engine, err := runtime.NewEngine(log, supervisor, messageRepository, runtime.EngineConfig{
		BufferSize:        config.BufferSize,
		PersistTimeout:    config.PersistTimeout,
		SinkTimeout:       config.SinkTimeout,
		HeartbeatInterval: config.HeartbeatInterval,
		CharReplacement:   config.ModerationCharReplacement,
	})
	if err != nil {
		return fmt.Errorf("engine setup failed: %w", err)
	}

	timeline := projection.NewTimeline(config.TimelineCapacity)
	engine.Add(sink.NewSearchSink(searchRepository, log), timeline)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Start(ctx)

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.MessageMapper, func() map[string]any {
			stats := engine.Monitoring().Snapshot()
			return map[string]any{
				"online":     len(engine.Presence().OnlineIDs()),
				"dispatched": stats.MessagesDispatched,
				"notified":   stats.NotificationsDelivered,
				"drops":      stats.DeliveryDrops,
				"rejected":   stats.RejectedMessages,
			}
		})
		log.Info("Debug inspect surface enabled", "port", config.DebugPort)
	}

	// 6. Services & HTTP surfaces
	chatService := services.NewChatService(engine, messageRepository, searchRepository)
	authService := services.NewAuthService(userRepository, config.TokenDuration)

	assetStore, err := storage.NewAssetStore(log, config.AssetDirectory, config.AssetBaseURL,
		config.AssetMaxSize, []string{"image/", "audio/", "video/", "application/pdf"})
	if err != nil {
		return fmt.Errorf("asset store setup failed: %w", err)
	}

	router := rest.NewServer(log, chatService, authService, assetStore).Router(config.AssetDirectory)
	router.Handle("/ws", ws.NewServer(log, chatService, config.ConnectionBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	engine.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
