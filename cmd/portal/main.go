package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/team-portal/internal/config"
	httptransport "github.com/example/team-portal/internal/http"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/notify"
	"github.com/example/team-portal/internal/scheduling"
	"github.com/example/team-portal/internal/store"
	"github.com/example/team-portal/internal/store/memory"
	"github.com/example/team-portal/internal/store/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	recordStore, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	now := time.Now
	tokenGenerator := uuid.NewString

	sessions := identity.NewManager(recordStore, cfg.SessionTTL, now, tokenGenerator)
	dispatcher := notify.NewStoreDispatcher(recordStore, logger, now)
	service := scheduling.NewService(recordStore, dispatcher, cfg.OrganizerPolicy, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(sessions, logger),
		Meetings: httptransport.NewMeetingHandler(service, logger),
		Weeks:    httptransport.NewWeekHandler(service, logger),
		Rooms:    httptransport.NewRoomHandler(service, logger),
		Users:    httptransport.NewUserHandler(service, logger),
	})

	protected := httptransport.RequireSession(sessions, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Login is the only route reachable without a session.
		if strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No ReadTimeout or WriteTimeout: /weeks websocket connections
		// stay open for the life of the client.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// openStore picks the backend by configuration: an empty DSN yields the
// in-memory store, anything else opens SQLite.
func openStore(cfg config.Config) (store.Store, func() error, error) {
	if cfg.SQLiteDSN == "" {
		s := memory.New()
		return s, func() error { s.Close(); return nil }, nil
	}
	s, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
