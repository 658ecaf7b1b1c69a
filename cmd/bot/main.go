package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	pgRepo "pixels-dojo/internal/infra/adapter/persistence/postgres"
	"pixels-dojo/internal/infra/db"
	"pixels-dojo/internal/observability/logging"
	chatUC "pixels-dojo/internal/usecase/chat"
	searchUC "pixels-dojo/internal/usecase/search"
	"pixels-dojo/pkg/config"
)

const (
	askCommand  = "!ask"
	helpCommand = "!help"

	answerTimeout = 15 * time.Second
)

const helpMessage = "Ask me anything about the game: `!ask how do I earn coins?`\n" +
	"I answer from the wiki and link the pages I used."

func main() {
	logger := logging.NewLogger()

	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		logger.Error("DISCORD_BOT_TOKEN must be set")
		os.Exit(1)
	}

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	repo := pgRepo.NewArticleRepo(database)
	searchSvc := searchUC.NewService(repo, logger)

	fallbacks, err := chatUC.LoadFallbacks(config.GetEnvString("CHAT_FALLBACK_CONFIG", ""))
	if err != nil {
		logger.Warn("invalid fallback config, using defaults", slog.Any("error", err))
		fallbacks = chatUC.DefaultFallbacks()
	}
	chatSvc := chatUC.NewService(searchSvc, nil, fallbacks, logger)
	wikiBaseURL := config.GetEnvString("WIKI_BASE_URL", "https://pixelsdojo.wiki")

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Error("failed to create discord session", slog.Any("error", err))
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	bot := &askBot{svc: chatSvc, wikiBaseURL: wikiBaseURL, logger: logger}
	session.AddHandler(bot.onMessage)

	if err := session.Open(); err != nil {
		logger.Error("failed to open discord gateway", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("bot connected to discord gateway")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if err := session.Close(); err != nil {
		logger.Error("failed to close discord session", slog.Any("error", err))
	}
	logger.Info("bot stopped")
}

type askBot struct {
	svc         *chatUC.Service
	wikiBaseURL string
	logger      *slog.Logger
}

func (b *askBot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case content == helpCommand:
		b.reply(s, m, helpMessage)
	case strings.HasPrefix(content, askCommand):
		question := strings.TrimSpace(strings.TrimPrefix(content, askCommand))
		if question == "" {
			b.reply(s, m, "Ask me something, for example: `!ask where can I find the sauna?`")
			return
		}
		b.answer(s, m, question)
	}
}

func (b *askBot) answer(s *discordgo.Session, m *discordgo.MessageCreate, question string) {
	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()

	answer, err := b.svc.Ask(ctx, question, "discord")
	if err != nil {
		b.logger.Error("failed to answer question",
			slog.String("channel_id", m.ChannelID),
			slog.Any("error", err))
		b.reply(s, m, "Something went wrong looking that up, try again in a bit.")
		return
	}

	b.reply(s, m, formatAnswer(answer, b.wikiBaseURL))
}

func (b *askBot) reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		b.logger.Warn("failed to send reply",
			slog.String("channel_id", m.ChannelID),
			slog.Any("error", err))
	}
}

func formatAnswer(answer *chatUC.Answer, wikiBaseURL string) string {
	base := strings.TrimRight(wikiBaseURL, "/")
	var sb strings.Builder
	sb.WriteString(answer.Text)
	if len(answer.Citations) > 0 {
		sb.WriteString("\n\nSources:")
		for _, c := range answer.Citations {
			sb.WriteString(fmt.Sprintf("\n- %s: %s/wiki/%s", c.Title, base, c.Slug))
		}
	}
	return sb.String()
}
