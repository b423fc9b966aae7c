package main

import (
	"fmt"
	"groupchat/infrastructure/grpc/client"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// app is the connection to the backend shared by every command.
type app struct {
	log     *slog.Logger
	conn    *grpc.ClientConn
	backend *client.Backend
	logFile *os.File
}

// newApp logs to stderr, or to the log file when the terminal belongs to the chat screen.
func newApp(toFile bool) (*app, error) {
	a := &app{log: logs.GetLoggerFromString(config.LogLevel)}
	if toFile {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		a.logFile = f
		var level slog.Level
		if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		a.log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	conn, err := grpc.NewClient(config.BackendAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("unable to reach %s: %w", config.BackendAddr, err)
	}
	a.conn = conn
	a.backend = client.NewBackend(a.log, conn, client.NewFileSessionStore(config.SessionFile))
	return a, nil
}

func (a *app) Close() {
	if a.conn != nil {
		_ = a.conn.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
