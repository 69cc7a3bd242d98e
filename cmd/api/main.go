package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"autorentool/api/internal/app"
	"autorentool/api/internal/backup"
	"autorentool/api/internal/config"
	"autorentool/api/internal/history"
	"autorentool/api/internal/search"
	"autorentool/api/internal/session"
	"autorentool/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	fileStore := store.NewFileStore(cfg.DataFile)
	historyService := history.New(cfg.HistoryDir)

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient)

	var sessions session.Holder
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for the session slot")
		redisHolder, err := session.NewRedisHolder(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisHolder.Close()
		sessions = redisHolder
	} else {
		log.Printf("Using the in-memory session slot")
		sessions = session.NewMemoryHolder()
	}

	var uploader *backup.Uploader
	if strings.TrimSpace(cfg.S3Endpoint) != "" {
		var err error
		uploader, err = backup.New(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("backup target unreachable: %v", err)
		}
		log.Printf("Mirroring the document to s3 bucket %q", cfg.S3Bucket)
	}

	service := app.New(fileStore, sessions, searchService, historyService, uploader)
	if err := service.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	httpServer := app.NewHTTPServer(service)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("AutorenTool listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
