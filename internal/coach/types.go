// Package coach turns user messages and profiles into Gemini prompts and
// validated responses: grounded chat replies and structured workout plans.
package coach

import (
	"context"

	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/rag"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ResponseTooLongMessage is returned to the user when the model hits the
// output token budget mid-reply.
const ResponseTooLongMessage = "Lo siento, mi respuesta fue demasiado larga. ¿Podrías hacer una pregunta más específica?"

// Turn is one prior message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Retriever finds knowledge passages relevant to a query.
type Retriever interface {
	Query(ctx context.Context, text string, sport string, topK int) ([]rag.Passage, error)
}

// TextGenerator produces a completion for a prompt. *gemini.Client
// satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts gemini.Options) (gemini.Outcome, error)
}
