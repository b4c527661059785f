package coach

import (
	"context"

	"github.com/coachx/coachx/internal/gemini"
	"github.com/coachx/coachx/internal/rag"
)

// fakeRetriever returns a fixed passage set and records the queries it saw.
type fakeRetriever struct {
	passages []rag.Passage
	err      error
	queries  []string
	sports   []string
	topKs    []int
}

func (f *fakeRetriever) Query(_ context.Context, text, sport string, topK int) ([]rag.Passage, error) {
	f.queries = append(f.queries, text)
	f.sports = append(f.sports, sport)
	f.topKs = append(f.topKs, topK)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.passages) > topK {
		return f.passages[:topK], nil
	}
	return f.passages, nil
}

// fakeGenerator returns a fixed outcome and records the last prompt.
type fakeGenerator struct {
	outcome gemini.Outcome
	err     error
	prompt  string
	opts    gemini.Options
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, opts gemini.Options) (gemini.Outcome, error) {
	f.prompt = prompt
	f.opts = opts
	if f.err != nil {
		return gemini.Outcome{}, f.err
	}
	return f.outcome, nil
}
