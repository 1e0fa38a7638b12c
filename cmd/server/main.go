package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DiarCode/q-tale/internal/config"
	"github.com/DiarCode/q-tale/internal/httpserver"
	"github.com/DiarCode/q-tale/internal/infra/storage"
	"github.com/DiarCode/q-tale/internal/voiceclone"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	var cloner httpserver.Cloner
	if cfg.VoiceCloneURL != "" {
		switch cfg.VoiceCloneMode {
		case "direct":
			cloner = voiceclone.NewDirectSubmitter()
		default:
			cloner = voiceclone.NewGradioSubmitter()
		}
	} else {
		log.Println("VOICECLONE_URL not set - voice cloning endpoints disabled")
	}

	var archive httpserver.Archiver
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		st, err := storage.New(storage.Config{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseKey,
			Bucket:         cfg.SupabaseBucket,
		})
		if err != nil {
			log.Printf("supabase storage unavailable: %v", err)
		} else {
			archive = st
		}
	}

	srv := httpserver.New(cfg, cloner, archive)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
