package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-analyzer/api/internal/config"
	"nutrition-analyzer/api/internal/httpserver"
	"nutrition-analyzer/api/internal/llm"
	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false
	log.Printf("authorized as @%s", bot.Self.UserName)

	engines := llm.FromConfig(cfg)
	r := telegram.NewRouter(bot, telegram.BotFetcher(bot), engines, nutrition.Limits{
		MaxImageBytes: cfg.MaxUploadBytes(),
		MaxPixels:     cfg.MaxImagePixels,
	}, cfg.RequestTimeout())

	mux := http.NewServeMux()
	mux.Handle("/healthz", httpserver.Healthz(func() string {
		if !engines.Ready() {
			return "ok\ncredential: missing"
		}
		return "ok"
	}))

	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, mux, bot, r, webhookURL)
	} else {
		startPollingMode(ctx, addr, mux, bot, r)
	}
}

func startWebhookMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	path, err := telegram.SetWebhook(bot, bot.Token, baseURL)
	if err != nil {
		log.Fatal(err)
	}

	updates := make(chan tgbotapi.Update, bot.Buffer)
	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Printf("webhook: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		select {
		case updates <- *upd:
		case <-req.Context().Done():
		}
	})
	go r.Serve(ctx, updates)

	log.Printf("webhook listening on %s%s", addr, path)
	if err := httpserver.Run(ctx, addr, mux); err != nil {
		log.Fatal(err)
	}
}

func startPollingMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router) {
	// the health endpoint still runs for the platform's probes
	go func() {
		if err := httpserver.Run(ctx, addr, mux); err != nil {
			log.Printf("health server: %v", err)
		}
	}()

	// a previously registered webhook blocks getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("delete webhook: %v", err)
	}

	telegram.Poll(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}
