package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/internal/config"
	"github.com/zixuanzhao/chat-relay/internal/handler"
	"github.com/zixuanzhao/chat-relay/internal/handler/ws"
	"github.com/zixuanzhao/chat-relay/internal/service/ai"
	chatservice "github.com/zixuanzhao/chat-relay/internal/service/chat"
	"github.com/zixuanzhao/chat-relay/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	authSvc := auth.NewService(store.Users(), []byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)

	// The relay starts without a completion provider; cycles then notify the
	// client that generation is unavailable instead of crashing.
	var completer chatservice.Completer
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize completion provider: %v", err)
		} else {
			completer = aiSvc
			log.Println("completion provider initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, starting without a completion provider")
	}

	chatSvc := chatservice.NewService(store.History(), completer)
	registry := ws.NewRegistry()
	router := handler.NewRouter(authSvc, chatSvc, registry)

	startServer(ctx, cfg.Server, router)
	registry.Drain()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat relay listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
