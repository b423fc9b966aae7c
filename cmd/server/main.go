package main

import (
	"context"
	"fmt"
	"groupchat/auth"
	"groupchat/domain/event"
	"groupchat/infrastructure/grpc/server"
	"groupchat/infrastructure/grpc/wire"
	"groupchat/internal"
	"groupchat/moderation"
	"groupchat/observability"
	"groupchat/repositories"
	"groupchat/runtime"
	"groupchat/runtime/workers"
	"groupchat/services"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server error.
// Deferred closes run before main exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Storage (BadgerDB) and search index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge index...")
		_ = blugeWriter.Close()
	}()

	groupRepository, err := repositories.NewGroupRepository(db, log)
	if err != nil {
		return err
	}
	defer func() { _ = groupRepository.Close() }()
	messageRepository, err := repositories.NewMessageRepository(db, log, config.LimitMessages)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()
	userRepository := repositories.NewUserRepository(db)
	messageIndex := repositories.NewMessageIndex(blugeWriter, log)

	moderator, err := moderation.NewModerator(config.CensoredWordList(), censoredChar, log)
	if err != nil {
		return fmt.Errorf("moderator init failed: %w", err)
	}

	// 3. Realtime fan-out under supervision
	registry := runtime.NewRegistry()
	monitor := observability.NewMonitoringManager(log)
	events := make(chan event.DomainEvent, config.BufferSize)
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(
		workers.NewEventFanout(log, events, registry, config.SinkTimeout),
		workers.NewHeartbeat(log, registry, monitor, config.HeartbeatInterval),
	)

	// 4. Services
	tokens := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(log, groupRepository, messageRepository, userRepository,
		messageIndex, moderator, registry, events, config.MaxContentLength, config.SearchLimit)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 6. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	interceptor := auth.NewInterceptor(tokens)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(monitor.Unary, interceptor.Unary),
		grpc.ChainStreamInterceptor(monitor.Stream, interceptor.Stream),
	)
	wire.RegisterBackendServer(s, server.NewBackendServer(log, authService, chatService, config.ConnectionBufferSize))

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC server", "address", config.Address(), "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		stop()
		<-supervisorDone
		return err
	}

	// 8. Final Cleanup: open subscriptions never end by themselves
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		log.Warn("Graceful stop timed out, closing remaining streams")
		s.Stop()
	}
	<-supervisorDone
	log.Info("Program stopped cleanly")
	return nil
}
