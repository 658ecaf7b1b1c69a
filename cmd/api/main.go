package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	hhttp "pixels-dojo/internal/handler/http"
	hadmin "pixels-dojo/internal/handler/http/admin"
	hchat "pixels-dojo/internal/handler/http/chat"
	hpage "pixels-dojo/internal/handler/http/page"
	pgRepo "pixels-dojo/internal/infra/adapter/persistence/postgres"
	"pixels-dojo/internal/infra/db"
	"pixels-dojo/internal/infra/feed"
	"pixels-dojo/internal/infra/notifier"
	"pixels-dojo/internal/infra/rewriter"
	"pixels-dojo/internal/infra/sanitize"
	"pixels-dojo/internal/observability/logging"
	"pixels-dojo/internal/repository"
	chatUC "pixels-dojo/internal/usecase/chat"
	"pixels-dojo/internal/usecase/importer"
	searchUC "pixels-dojo/internal/usecase/search"
	"pixels-dojo/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	validateJWTSecret(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	repo := pgRepo.NewArticleRepo(database)
	searchSvc := searchUC.NewService(repo, logger)
	chatSvc := buildChatService(logger, searchSvc)
	importSvc := buildImportService(logger, repo)

	mux := http.NewServeMux()
	hpage.Register(mux, repo, searchSvc)
	hchat.Register(mux, chatSvc)
	hadmin.Register(mux, importSvc, logger)
	mux.Handle("GET /healthz", hhttp.HealthHandler{DB: database})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	addr := config.GetEnvString("API_ADDR", ":8080")
	server := &http.Server{
		Addr:         addr,
		Handler:      hhttp.MetricsMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // manual imports run inside a request
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("api server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("api server stopped")
}

func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
}

func buildChatService(logger *slog.Logger, searchSvc *searchUC.Service) *chatUC.Service {
	fallbacks, err := chatUC.LoadFallbacks(config.GetEnvString("CHAT_FALLBACK_CONFIG", ""))
	if err != nil {
		logger.Warn("invalid fallback config, using defaults", slog.Any("error", err))
		fallbacks = chatUC.DefaultFallbacks()
	}
	return chatUC.NewService(searchSvc, buildRewriter(logger), fallbacks, logger)
}

func buildRewriter(logger *slog.Logger) chatUC.Rewriter {
	switch config.GetEnvString("REWRITER_TYPE", "none") {
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set, answer rewriting disabled")
			return rewriter.NewNoOp()
		}
		logger.Info("answer rewriter enabled", slog.String("provider", "claude"))
		return rewriter.NewClaude(apiKey, logger)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Warn("OPENAI_API_KEY not set, answer rewriting disabled")
			return rewriter.NewNoOp()
		}
		logger.Info("answer rewriter enabled", slog.String("provider", "openai"))
		return rewriter.NewOpenAI(apiKey, logger)
	default:
		return rewriter.NewNoOp()
	}
}

func buildImportService(logger *slog.Logger, repo repository.ArticleRepository) *importer.Service {
	keyword := config.GetEnvString("FEED_KEYWORD", "ama")
	client := feed.NewHTTPClient()

	var parser feed.Parser
	feedURL := config.GetEnvString("FEED_URL", "")
	switch feed.Format(config.GetEnvString("FEED_FORMAT", string(feed.FormatRSS))) {
	case feed.FormatArchive:
		parser = feed.NewArchiveParser(client, config.GetEnvString("FEED_URL_PREFIX", feedURL), keyword)
	default:
		parser = feed.NewRSSParser(client, keyword)
	}

	sanitizer := sanitize.New(
		config.GetEnvString("SOURCE_NAME", "Pixels Dojo Newsletter"),
		config.GetEnvString("SOURCE_HOME", "https://pixelsdojo.substack.com"),
		sanitize.Options{StripImages: config.GetEnvBool("STRIP_IMAGES", true)},
	)

	var announce importer.Notifier
	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		announce = notifier.NewDiscord(notifier.DiscordConfig{
			WebhookURL:  webhookURL,
			WikiBaseURL: config.GetEnvString("WIKI_BASE_URL", "https://pixelsdojo.wiki"),
		}, logger)
		logger.Info("discord page announcements enabled")
	}

	cfg := importer.Config{
		FeedURL:        feedURL,
		Category:       config.GetEnvString("IMPORT_CATEGORY", "amas"),
		SystemAuthorID: int64(config.GetEnvInt("SYSTEM_AUTHOR_ID", 1)),
		Cutoff:         config.GetEnvDate("IMPORT_CUTOFF", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)),
		NoSnippet:      config.GetEnvBool("NO_SNIPPET", true),
	}
	return importer.NewService(parser, repo, sanitizer, announce, cfg, logger)
}
