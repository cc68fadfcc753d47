package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"nutrition-analyzer/api/internal/config"
	"nutrition-analyzer/api/internal/handle"
	"nutrition-analyzer/api/internal/httpserver"
	"nutrition-analyzer/api/internal/llm"
	"nutrition-analyzer/api/internal/nutrition"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	engines := llm.FromConfig(cfg)
	if !engines.Ready() {
		log.Printf("no API key for provider %q: analyses will fail until one is configured", cfg.LLMProvider)
	}

	h := handle.New(engines, handle.Options{
		Limits: nutrition.Limits{
			MaxImageBytes: cfg.MaxUploadBytes(),
			MaxPixels:     cfg.MaxImagePixels,
		},
		Timeout:     cfg.RequestTimeout(),
		CORSOrigins: cfg.CORSOrigins,
	})

	addr := "0.0.0.0:" + cfg.Port
	if err := httpserver.Run(ctx, addr, h.Router()); err != nil {
		log.Fatal(err)
	}
}
