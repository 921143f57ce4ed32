package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/db/mock"
	applog "foodgram/internal/log"
	"foodgram/internal/server"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	database, err := resolveDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to configure database: %v", err)
	}

	srv, err := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Session:   cfg.Session,
		Database:  database,
		MediaRoot: cfg.Media.Root,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	go func() {
		log.Printf("starting http server on %s", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server encountered an error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	log.Println("shutting down http server")
	if err := srv.Stop(); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

// resolveDatabase opens the configured database, falling back to the seeded
// in-memory dataset when no URL is set so the server still comes up locally.
func resolveDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.Database.URL == "" {
		applog.Info(context.Background(), "no database URL configured, using seeded in-memory database")
		return mock.New(context.Background())
	}
	return db.Configure(cfg.Database)
}
