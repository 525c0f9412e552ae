package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/store-ratings/internal/auth"
	"github.com/Clark-Hu/store-ratings/internal/config"
	httpserver "github.com/Clark-Hu/store-ratings/internal/http"
	"github.com/Clark-Hu/store-ratings/internal/repository"
	"github.com/Clark-Hu/store-ratings/internal/store"
)

func main() {
	var (
		envFile    = flag.String("env", ".env", "optional dotenv file")
		migrations = flag.String("migrations", "db/migrations", "directory of *.up.sql files; empty skips migration")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("dotenv error: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[store-ratings] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if *migrations != "" {
		if err := st.Migrate(dbCtx, *migrations); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("init tokens: %v", err)
	}

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.RedisURL != "" {
		rdb, err := auth.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("init redis: %v", err)
		}
		defer rdb.Close()
		if err := rdb.Ping(dbCtx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		logger.Println("token revocation backed by redis")
		revoker = auth.NewRedisRevoker(rdb)
	}

	server := httpserver.New(cfg, httpserver.Deps{
		Health:  st,
		Repo:    repository.New(st),
		Hasher:  auth.NewHasher(cfg.BcryptCost),
		Tokens:  tokens,
		Revoker: revoker,
	}, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()
	logger.Printf("listening on :%s", cfg.Port)

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
