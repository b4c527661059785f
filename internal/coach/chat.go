package coach

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/profile"
	"github.com/coachx/coachx/internal/rag"
)

const (
	// chatTopK is how many passages ground a chat reply. Kept small: chat
	// answers need a hint, not an essay.
	chatTopK = 2

	// chatContextBudget caps the formatted context block in chat prompts.
	chatContextBudget = 800
)

// Assistant answers free-form training questions grounded in retrieved
// knowledge, the user's profile, and recent conversation history.
type Assistant struct {
	retriever Retriever
	generator TextGenerator
	maxTokens int32
	logger    *slog.Logger
}

// NewAssistant creates an Assistant. maxTokens bounds each reply; logger may
// be nil.
func NewAssistant(retriever Retriever, generator TextGenerator, maxTokens int32, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{retriever: retriever, generator: generator, maxTokens: maxTokens, logger: logger}
}

// Respond answers query with a plain-text, domain-constrained reply.
//
// A truncated completion is downgraded to a fixed "too long" reply rather
// than an error; safety blocks, empty completions and other abnormal stops
// surface as *gemini.GenerationError.
func (a *Assistant) Respond(ctx context.Context, query, sport string, history []Turn, prof profile.Profile) (string, error) {
	passages, err := a.retriever.Query(ctx, query, sport, chatTopK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	contextBlock := rag.TruncateContext(rag.FormatContext(passages), chatContextBudget)
	a.logger.Debug("chat context assembled", "passages", len(passages), "context_chars", len(contextBlock))

	summary := ""
	if !prof.IsZero() {
		summary = prof.Summary()
	}

	prompt := BuildChatPrompt(ChatPromptParams{
		Query:          query,
		Sport:          sport,
		ProfileSummary: summary,
		History:        history,
		Context:        contextBlock,
	})

	outcome, err := a.generator.Generate(ctx, prompt, gemini.Options{MaxOutputTokens: a.maxTokens})
	if err != nil {
		return "", err
	}

	switch outcome.Kind {
	case gemini.Success:
		return StripMarkdown(outcome.Text), nil
	case gemini.Truncated:
		a.logger.Warn("chat reply truncated, returning canned message")
		return ResponseTooLongMessage, nil
	default:
		return "", &gemini.GenerationError{Reason: outcome.Reason}
	}
}
