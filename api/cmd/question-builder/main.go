package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"question-builder/api/internal/config"
	"question-builder/api/internal/handle"
	"question-builder/api/internal/httpserver"
	"question-builder/api/internal/ocr"
	"question-builder/api/internal/ocr/gemini"
	"question-builder/api/internal/ocr/openai"
	"question-builder/api/internal/storage"
	"question-builder/api/internal/store"
	"question-builder/api/internal/telegram"
	"question-builder/api/internal/util"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines := &ocr.Engines{Default: cfg.Provider}
	if cfg.GeminiAPIKey != "" {
		engines.Gemini = ocr.WithLogging(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), logger)
	}
	if cfg.OpenAIAPIKey != "" {
		engines.OpenAI = ocr.WithLogging(openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel), logger)
	}

	opts := handle.Options{
		GatewayTimeout: cfg.GatewayTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}
	checks := map[string]httpserver.HealthChecker{}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("archive db unavailable", "dsn", store.SafeDSNSummary(cfg.DatabaseURL), "err", err)
			os.Exit(1)
		}
		defer db.Close()
		repo := store.NewPaperRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("archive schema", "err", err)
			os.Exit(1)
		}
		opts.Archive = repo
		checks["archive"] = httpserver.CheckFunc(repo.Ping)
		if cfg.ArchiveRetention > 0 {
			go purgeLoop(ctx, repo, cfg.ArchiveRetention, logger)
		}
		logger.Info("paper archive enabled", "dsn", store.SafeDSNSummary(cfg.DatabaseURL))
	}

	if cfg.MinioEndpoint != "" {
		scans, err := storage.New(ctx, cfg.MinioEndpoint, cfg.MinioRegion, cfg.MinioBucket,
			cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			logger.Error("scan storage unavailable", "endpoint", cfg.MinioEndpoint, "err", err)
			os.Exit(1)
		}
		opts.Scans = scans
		checks["scans"] = scans
		logger.Info("scan archive enabled", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	}

	h := handle.New(engines, opts)
	routerOpts := httpserver.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Checks:         checks,
		Logger:         logger,
	}

	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Error("telegram bot", "err", err)
			os.Exit(1)
		}
		tg := telegram.NewRouter(bot, h, logger, cfg.GatewayTimeout)
		if cfg.WebhookURL != "" {
			// secret path so only Telegram knows where to post
			path := "/telegram/webhook/" + util.SHA256Hex([]byte(bot.Token))[:16]
			if err := tg.SetWebhook(strings.TrimRight(cfg.WebhookURL, "/") + path); err != nil {
				logger.Error("telegram webhook", "err", err)
				os.Exit(1)
			}
			routerOpts.TelegramWebhook = tg.WebhookHandler()
			routerOpts.WebhookPath = path
			logger.Info("telegram bot enabled", "mode", "webhook", "username", bot.Self.UserName)
		} else {
			if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				logger.Warn("telegram delete webhook", "err", err)
			}
			go tg.Poll(ctx)
			logger.Info("telegram bot enabled", "mode", "polling", "username", bot.Self.UserName)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.NewRouter(h, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      handle.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("question-builder listening", "addr", srv.Addr, "provider", cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// purgeLoop trims the archive once at startup and then daily.
func purgeLoop(ctx context.Context, repo *store.PaperRepo, keep time.Duration, log *slog.Logger) {
	t := time.NewTicker(24 * time.Hour)
	defer t.Stop()
	for {
		n, err := repo.PurgeOlderThan(ctx, keep)
		if err != nil {
			log.Warn("archive purge failed", "err", err)
		} else if n > 0 {
			log.Info("archive purged", "rows", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
