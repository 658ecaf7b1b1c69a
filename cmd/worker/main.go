package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgRepo "pixels-dojo/internal/infra/adapter/persistence/postgres"
	"pixels-dojo/internal/infra/db"
	"pixels-dojo/internal/infra/feed"
	"pixels-dojo/internal/infra/notifier"
	"pixels-dojo/internal/infra/sanitize"
	workerPkg "pixels-dojo/internal/infra/worker"
	"pixels-dojo/internal/observability/logging"
	"pixels-dojo/internal/repository"
	"pixels-dojo/internal/usecase/importer"
	"pixels-dojo/pkg/config"
)

func main() {
	logger := logging.NewLogger()

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	waitForMigrations(logger, database)

	repo := pgRepo.NewArticleRepo(database)
	importSvc := buildImportService(logger, repo)

	workerConfig := workerPkg.LoadConfigFromEnv(logger)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("import_timeout", workerConfig.ImportTimeout))

	scheduler, err := workerPkg.NewScheduler(workerConfig, func(ctx context.Context, trigger string) error {
		_, err := importSvc.Run(ctx, trigger)
		return err
	}, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	healthServer.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	healthServer.SetReady(false)
	scheduler.Stop()
	logger.Info("worker stopped")
}

// waitForMigrations blocks until the API process has created the schema.
func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM pages LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
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
