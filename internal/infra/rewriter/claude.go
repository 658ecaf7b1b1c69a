// Package rewriter provides AI-backed answer rephrasing implementations.
// It includes adapters for Claude (Anthropic) and OpenAI APIs. Rewriting is
// an optional polish step: callers must treat any error as "use the draft
// answer as-is".
package rewriter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// maxDraftChars caps the excerpt sent to the model. Drafts are short
	// excerpts already, this only guards against pathological page bodies.
	maxDraftChars = 4000

	rewriteTimeout   = 15 * time.Second
	rewriteMaxTokens = 512
)

// Claude rephrases draft answers using Anthropic's Claude API.
type Claude struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func NewClaude(apiKey string, logger *slog.Logger) *Claude {
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  string(anthropic.ModelClaudeSonnet4_5_20250929),
		logger: logger,
	}
}

// Rewrite turns a wiki excerpt into a short conversational answer to the
// player's question. The model is instructed to stay within the excerpt's
// facts; on any API failure the caller falls back to the draft.
func (c *Claude) Rewrite(ctx context.Context, question, draft string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, rewriteTimeout)
	defer cancel()

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: rewriteMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(buildPrompt(question, draft)),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	c.logger.Debug("answer rewritten",
		slog.String("provider", "claude"),
		slog.Duration("duration", time.Since(start)))
	return block.Text, nil
}

func buildPrompt(question, draft string) string {
	if len(draft) > maxDraftChars {
		draft = draft[:maxDraftChars]
	}
	return fmt.Sprintf(
		"A player asked: %q\n\n"+
			"Here is the relevant excerpt from the game wiki:\n%s\n\n"+
			"Answer the question in one or two friendly sentences using only "+
			"facts from the excerpt. Do not invent details.",
		question, draft)
}
