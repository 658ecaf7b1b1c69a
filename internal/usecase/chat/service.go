// Package chat answers free-text questions about the game by searching the
// wiki and composing an excerpt-based reply with citations. When nothing
// matches, a canned fallback keyed on the question's intent is returned so
// the assistant never answers with silence.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"pixels-dojo/internal/usecase/search"
)

const (
	maxExcerptLen = 200
	maxCitations  = 3
)

// Citation points a reader at the wiki page an answer was drawn from.
type Citation struct {
	Title    string
	Slug     string
	Category string
}

// Answer is a composed chat reply.
type Answer struct {
	Text      string
	Citations []Citation
	// Fallback reports that no page matched and a canned reply was used.
	Fallback bool
}

// Searcher is the slice of the search service the chat assistant needs.
type Searcher interface {
	Search(ctx context.Context, query, consumer string, limit int) ([]search.Result, error)
}

// Rewriter optionally rephrases a raw excerpt answer into conversational
// prose. A failing rewriter degrades to the plain excerpt answer.
type Rewriter interface {
	Rewrite(ctx context.Context, question, draft string) (string, error)
}

type Service struct {
	searcher  Searcher
	rewriter  Rewriter
	fallbacks *FallbackSet
	logger    *slog.Logger
}

func NewService(searcher Searcher, rewriter Rewriter, fallbacks *FallbackSet, logger *slog.Logger) *Service {
	if fallbacks == nil {
		fallbacks = DefaultFallbacks()
	}
	return &Service{
		searcher:  searcher,
		rewriter:  rewriter,
		fallbacks: fallbacks,
		logger:    logger,
	}
}

// Ask answers a question using wiki content, falling back to a canned reply
// keyed on intent when no page matches. The consumer label distinguishes the
// chat widget from the Discord bot on metrics.
func (s *Service) Ask(ctx context.Context, question, consumer string) (*Answer, error) {
	results, err := s.searcher.Search(ctx, question, consumer, maxCitations)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	if len(results) == 0 {
		return &Answer{Text: s.fallbacks.For(question), Fallback: true}, nil
	}

	top := results[0]
	text := excerpt(top.Title, top.Body, top.Summary, search.Tokenize(question))
	text = s.maybeRewrite(ctx, question, text)

	answer := &Answer{Text: text}
	for _, r := range results {
		answer.Citations = append(answer.Citations, Citation{
			Title:    r.Title,
			Slug:     r.Slug,
			Category: r.Category,
		})
	}
	return answer, nil
}

func (s *Service) maybeRewrite(ctx context.Context, question, draft string) string {
	if s.rewriter == nil {
		return draft
	}
	rewritten, err := s.rewriter.Rewrite(ctx, question, draft)
	if err != nil {
		s.logger.Warn("answer rewrite failed, using plain excerpt", slog.Any("error", err))
		return draft
	}
	return rewritten
}

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// excerpt picks the best snippet from the top-ranked page: the first
// sentence containing a query token, else the summary, else the opening of
// the body.
func excerpt(title, body, summary string, tokens []string) string {
	plain := whitespaceRe.ReplaceAllString(tagRe.ReplaceAllString(body, " "), " ")
	plain = strings.TrimSpace(plain)

	if sentence := matchingSentence(plain, tokens); sentence != "" {
		return fmt.Sprintf("%s — %s", title, sentence)
	}
	if summary != "" {
		return fmt.Sprintf("%s — %s", title, summary)
	}
	return fmt.Sprintf("%s — %s", title, truncate(plain, maxExcerptLen))
}

func matchingSentence(plain string, tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	for _, sentence := range splitSentences(plain) {
		lower := strings.ToLower(sentence)
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return truncate(sentence, maxExcerptLen)
			}
		}
	}
	return ""
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p+".")
		}
	}
	return sentences
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Never split a multi-byte rune at the byte limit.
	end := limit
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	cut := text[:end]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
