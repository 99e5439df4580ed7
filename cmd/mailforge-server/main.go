package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailforge/internal/config"
	"mailforge/internal/convert"
	"mailforge/internal/logging"
	"mailforge/internal/server"
	"mailforge/internal/storage"
	"mailforge/internal/upload"
)

func main() {
	logger := logging.NewComponentLogger("Main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		logger.Error("Storage backend error: %v", err)
		os.Exit(1)
	}

	uploader := upload.New(backend, logging.NewComponentLogger("Uploader"))
	converter := convert.New(uploader, logging.NewComponentLogger("Converter"))
	srv := server.New(cfg, converter, logging.NewComponentLogger("Server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error: %v", err)
			os.Exit(1)
		}
	}
}

func buildBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Provider {
	case config.ProviderCloudinary:
		return storage.NewCloudinary(storage.CloudinaryConfig{
			CloudName:    cfg.Storage.CloudName,
			UploadPreset: cfg.Storage.UploadPreset,
			APIKey:       cfg.Storage.APIKey,
			APISecret:    cfg.Storage.APISecret,
		})
	case config.ProviderMemory:
		return storage.NewMemory(cfg.Storage.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
