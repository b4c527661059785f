// Package gemini wraps the official google.golang.org/genai SDK behind the two
// operations the rest of the backend needs: text generation with finish-reason
// inspection, and text embedding for the vector store.
//
// The underlying genai.Client is constructed lazily on first use and memoized
// behind a sync.Once, so concurrent first calls cannot double-construct it.
// A missing or rejected API key surfaces as *AuthError on every call.
package gemini

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"github.com/coachx/coachx/internal/log"
)

// EmbeddingDimension is the vector size requested from the embedding model.
// gemini-embedding-001 outputs 3072 dimensions by default and supports
// truncation via OutputDimensionality; the knowledge_chunks schema stores
// vector(768), so the two must stay in sync.
const EmbeddingDimension = 768

// ErrMissingAPIKey indicates no Gemini API key was configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set")

// Config holds the settings the client needs.
type Config struct {
	// APIKey is the Gemini API key. Empty is allowed at construction time and
	// reported as *AuthError on first use.
	APIKey string

	// Model is the generation model, e.g. "gemini-2.5-flash".
	Model string

	// EmbedderModel is the embedding model, e.g. "gemini-embedding-001".
	EmbedderModel string

	// Temperature, TopP and TopK are the default decoding parameters.
	Temperature float32
	TopP        float32
	TopK        float32
}

// Options tunes a single Generate call.
type Options struct {
	// MaxOutputTokens bounds the completion length. Required (>0).
	MaxOutputTokens int32

	// Temperature, TopP and TopK, when non-nil, override the client defaults
	// for this call. A pointer to zero is an explicit zero, not "use default".
	Temperature *float32
	TopP        *float32
	TopK        *float32
}

// Client calls the Gemini API. Safe for concurrent use.
type Client struct {
	cfg    Config
	logger log.Logger

	initOnce sync.Once
	api      *genai.Client
	initErr  error
}

// NewClient creates a Client. The genai connection is not established until
// the first Generate or embedding call.
func NewClient(cfg Config, logger log.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// client returns the memoized genai.Client, constructing it on first call.
func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.initOnce.Do(func() {
		if c.cfg.APIKey == "" {
			c.initErr = &AuthError{Err: ErrMissingAPIKey}
			return
		}

		c.logger.Info("initializing gemini client", "model", c.cfg.Model)

		api, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.initErr = &AuthError{Err: err}
			return
		}
		c.api = api
	})

	if c.initErr != nil {
		return nil, c.initErr
	}
	return c.api, nil
}

// safetySettings blocks medium-and-above content across all harm categories.
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  cat,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// Generate sends prompt to the model and maps the completion to an Outcome.
//
// The returned error covers authentication and transport failures only;
// abnormal completions (truncation, safety block, empty text) are reported
// through Outcome.Kind so each call site can apply its own policy.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (Outcome, error) {
	api, err := c.client(ctx)
	if err != nil {
		return Outcome{}, err
	}

	config := c.generationConfig(opts)

	resp, err := api.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), config)
	if err != nil {
		return Outcome{}, &GenerationError{Reason: "api call failed", Err: err}
	}

	outcome := outcomeFromResponse(resp)
	c.logger.Debug("generation finished",
		"kind", outcome.Kind.String(),
		"reason", outcome.Reason,
		"chars", len(outcome.Text))
	return outcome, nil
}

// generationConfig merges per-call options over the client's default decoding
// parameters.
func (c *Client) generationConfig(opts Options) *genai.GenerateContentConfig {
	temperature := c.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	topP := c.cfg.TopP
	if opts.TopP != nil {
		topP = *opts.TopP
	}
	topK := c.cfg.TopK
	if opts.TopK != nil {
		topK = *opts.TopK
	}

	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopP:            genai.Ptr(topP),
		TopK:            genai.Ptr(topK),
		MaxOutputTokens: opts.MaxOutputTokens,
		SafetySettings:  safetySettings(),
	}
}
