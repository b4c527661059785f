package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/profile"
	"github.com/coachx/coachx/internal/rag"
)

const (
	// MinPlanWeeks and MaxPlanWeeks bound requested plan durations.
	MinPlanWeeks = 1
	MaxPlanWeeks = 12
)

// GeneratedPlan is a validated workout plan produced by the model. The weekly
// structure is kept opaque beyond the top level: week labels map to day
// entries whose inner shape is the model's responsibility.
type GeneratedPlan struct {
	Title         string                     `json:"title"`
	Description   string                     `json:"description"`
	PlanStructure map[string]json.RawMessage `json:"plan_structure"`
}

// PlanGenerator produces multi-week workout plans personalized to a profile.
type PlanGenerator struct {
	retriever Retriever
	generator TextGenerator
	maxTokens int32
	logger    *slog.Logger
}

// NewPlanGenerator creates a PlanGenerator. maxTokens bounds the plan
// completion; logger may be nil.
func NewPlanGenerator(retriever Retriever, generator TextGenerator, maxTokens int32, logger *slog.Logger) *PlanGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanGenerator{retriever: retriever, generator: generator, maxTokens: maxTokens, logger: logger}
}

// Generate produces a durationWeeks-long plan for prof. customNotes, when
// non-empty, is injected as additional requirements.
//
// Unlike chat, a truncated completion here is a hard error: a half-formed
// JSON plan cannot be repaired.
func (g *PlanGenerator) Generate(ctx context.Context, prof profile.Profile, durationWeeks int, customNotes string) (GeneratedPlan, error) {
	if durationWeeks < MinPlanWeeks || durationWeeks > MaxPlanWeeks {
		return GeneratedPlan{}, fmt.Errorf("duration must be between %d and %d weeks, got %d",
			MinPlanWeeks, MaxPlanWeeks, durationWeeks)
	}

	sport := prof.PrimarySport
	if sport == "" {
		sport = "general fitness"
	}

	knowledge := g.workoutKnowledge(ctx, sport)
	prompt := BuildPlanPrompt(prof.PlanContext(), knowledge, durationWeeks, sport, customNotes)

	g.logger.Info("generating workout plan", "sport", sport, "weeks", durationWeeks, "prompt_chars", len(prompt))

	outcome, err := g.generator.Generate(ctx, prompt, gemini.Options{MaxOutputTokens: g.maxTokens})
	if err != nil {
		return GeneratedPlan{}, err
	}
	if outcome.Kind != gemini.Success {
		return GeneratedPlan{}, &gemini.GenerationError{Reason: outcome.Reason}
	}

	plan, err := ParsePlan(outcome.Text)
	if err != nil {
		return GeneratedPlan{}, err
	}

	if len(plan.PlanStructure) != durationWeeks {
		return GeneratedPlan{}, &gemini.GenerationError{
			Reason: fmt.Sprintf("expected %d weeks, model produced %d", durationWeeks, len(plan.PlanStructure)),
		}
	}

	g.logger.Info("workout plan generated", "title", plan.Title)
	return plan, nil
}

// workoutKnowledge gathers reference passages for plan generation: two
// sport-scoped queries, one passage each. Retrieval failures and empty
// results both fall back to a generic guidance line so plan generation never
// depends on the index being populated.
func (g *PlanGenerator) workoutKnowledge(ctx context.Context, sport string) string {
	queries := []string{
		sport + " exercises",
		sport + " training program",
	}

	var passages []rag.Passage
	for _, query := range queries {
		results, err := g.retriever.Query(ctx, query, sport, 1)
		if err != nil {
			g.logger.Warn("plan knowledge query failed", "query", query, "error", err)
			continue
		}
		passages = append(passages, results...)
	}

	if len(passages) == 0 {
		return knowledgeFallback
	}
	return rag.FormatContext(passages)
}

// ParsePlan parses a model completion into a GeneratedPlan.
//
// A wrapping markdown code fence is stripped first (the model sometimes adds
// one despite instructions). Validation covers the top level only: title and
// plan_structure must be present, description defaults to title. Day and
// exercise entries are accepted as-is.
func ParsePlan(text string) (GeneratedPlan, error) {
	text = stripCodeFence(text)

	var plan GeneratedPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return GeneratedPlan{}, &gemini.GenerationError{Reason: "invalid JSON", Err: err}
	}

	if plan.Title == "" {
		return GeneratedPlan{}, &gemini.GenerationError{Reason: "missing title"}
	}
	if plan.PlanStructure == nil {
		return GeneratedPlan{}, &gemini.GenerationError{Reason: "missing plan_structure"}
	}
	if plan.Description == "" {
		plan.Description = plan.Title
	}
	return plan, nil
}

// stripCodeFence removes a surrounding ```json ... ``` (or bare ```) fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
