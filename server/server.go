// Package server wires the messaging gateway together: the broadcast
// hub, the per-connection pumps, the persistence layer, the presence
// registry and the REST surface.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/whisperchat/whisperd/server/api"
	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/media"
	"github.com/whisperchat/whisperd/server/middleware"
	"github.com/whisperchat/whisperd/server/presence"
	"github.com/whisperchat/whisperd/server/rest"
)

// Config carries the flag-provided runtime settings.
type Config struct {
	Addr         string
	DBPath       string
	SchemaPath   string
	MediaDir     string
	MediaBaseURL string
	// RedisAddr switches the presence registry to a shared Redis set
	// when non-empty, for multi-process deployments.
	RedisAddr string
	LogLevel  string
	Seed      bool
}

type ChatServer struct {
	cfg      Config
	logger   *slog.Logger
	db       *db.DB
	hub      *Hub
	api      *api.Api
	rest     *rest.API
	presence presence.Registry
}

func NewChatServer(cfg Config) (*ChatServer, error) {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	database, err := db.NewDB(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.SchemaPath != "" {
		if err := database.RunSQLFile(cfg.SchemaPath); err != nil {
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	var registry presence.Registry
	if cfg.RedisAddr != "" {
		registry = presence.NewRedisRegistry(cfg.RedisAddr)
		logger.Info("using redis presence registry", "addr", cfg.RedisAddr)
	} else {
		registry = presence.NewMemoryRegistry()
	}

	store := media.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL, logger)

	s := &ChatServer{
		cfg:      cfg,
		logger:   logger,
		db:       database,
		hub:      newHub(logger),
		api:      api.NewApi(database, store, logger),
		rest:     rest.NewAPI(database, logger),
		presence: registry,
	}

	if cfg.Seed {
		if err := s.seed(context.Background()); err != nil {
			return nil, fmt.Errorf("seeding: %w", err)
		}
	}

	return s, nil
}

func (s *ChatServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	logmw := middleware.RequestLogMiddleware(s.logger)
	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.HandleFunc(pattern,
			middleware.RecoverMiddleware(s.logger)(
				middleware.RequestIDMiddleware()(
					logmw(route)(h))))
	}

	mux.HandleFunc("GET /ws/{userId}", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.hub, s.api, s.presence, s.db, w, r)
	})

	handle("GET /api/v1/users/{userId}/rooms", "user rooms", s.rest.GetUserRooms)
	handle("POST /api/v1/rooms", "create room", s.rest.CreateRoom)
	handle("GET /api/v1/rooms/{roomId}/messages", "room messages", s.rest.GetRoomMessages)

	// decoded attachments are served straight off disk
	mux.Handle("GET /media_files/",
		http.StripPrefix("/media_files/",
			http.FileServer(http.Dir(s.cfg.MediaDir+"/media_files"))))

	return mux
}

// Run starts the hub and the HTTP server and blocks until SIGINT or
// SIGTERM, then drains connections.
func (s *ChatServer) Run() error {
	go s.hub.run()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return s.db.Close()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
