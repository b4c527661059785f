package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/coachx/coachx/internal/log"
)

// response builds a minimal GenerateContentResponse for mapping tests.
func response(reason genai.FinishReason, text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: reason,
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func TestOutcomeFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		wantKind StopKind
		wantText string
	}{
		{"nil response", nil, Empty, ""},
		{"no candidates", &genai.GenerateContentResponse{}, Empty, ""},
		{"normal stop", response(genai.FinishReasonStop, "hello"), Success, "hello"},
		{"normal stop empty text", response(genai.FinishReasonStop, ""), Empty, ""},
		{"max tokens", response(genai.FinishReasonMaxTokens, "partial"), Truncated, ""},
		{"safety", response(genai.FinishReasonSafety, ""), SafetyBlocked, ""},
		{"recitation", response(genai.FinishReasonRecitation, ""), OtherStop, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := outcomeFromResponse(tt.resp)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestOutcomeFromResponse_KeepsRawReason(t *testing.T) {
	t.Parallel()

	got := outcomeFromResponse(response(genai.FinishReasonSafety, ""))
	assert.Equal(t, string(genai.FinishReasonSafety), got.Reason)
}

func TestGenerationConfig_Overrides(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Temperature: 0.7, TopP: 0.9, TopK: 40}, log.NewNop())

	t.Run("defaults when unset", func(t *testing.T) {
		t.Parallel()

		cfg := client.generationConfig(Options{MaxOutputTokens: 128})
		assert.Equal(t, float32(0.7), *cfg.Temperature)
		assert.Equal(t, float32(0.9), *cfg.TopP)
		assert.Equal(t, float32(40), *cfg.TopK)
		assert.Equal(t, int32(128), cfg.MaxOutputTokens)
		assert.NotEmpty(t, cfg.SafetySettings)
	})

	t.Run("explicit zero is honored", func(t *testing.T) {
		t.Parallel()

		cfg := client.generationConfig(Options{
			MaxOutputTokens: 128,
			Temperature:     genai.Ptr(float32(0)),
		})
		assert.Zero(t, *cfg.Temperature)
		assert.Equal(t, float32(0.9), *cfg.TopP, "unset options keep their defaults")
	})

	t.Run("non-zero override", func(t *testing.T) {
		t.Parallel()

		cfg := client.generationConfig(Options{
			MaxOutputTokens: 128,
			TopK:            genai.Ptr(float32(10)),
		})
		assert.Equal(t, float32(10), *cfg.TopK)
	})
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Model: "gemini-2.5-flash"}, log.NewNop())

	_, err := client.Generate(context.Background(), "hello", Options{MaxOutputTokens: 128})
	require.Error(t, err)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr), "want *AuthError, got %T", err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestEmbed_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{EmbedderModel: "gemini-embedding-001"}, log.NewNop())

	_, err := client.EmbedQuery(context.Background(), "jab technique")
	require.Error(t, err)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr), "want *AuthError, got %T", err)
}

func TestEmbedDocuments_EmptyInput(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{}, log.NewNop())

	// Empty input never touches the API, so no auth error either.
	vectors, err := client.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestStopKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "truncated", Truncated.String())
	assert.Equal(t, "safety_blocked", SafetyBlocked.String())
	assert.Equal(t, "other_stop", OtherStop.String())
	assert.Equal(t, "empty", Empty.String())
}

func TestGenerationError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &GenerationError{Reason: "SAFETY", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "SAFETY")
}
