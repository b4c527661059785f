package gemini

import "google.golang.org/genai"

// StopKind classifies how a generation attempt ended, mapped from the model's
// finish reason. Callers decide how each kind surfaces: chat downgrades
// Truncated to a canned reply, plan generation treats it as a hard error.
type StopKind int

const (
	// Success is a normal completion with non-empty text.
	Success StopKind = iota

	// Truncated means the completion hit the output token budget.
	Truncated

	// SafetyBlocked means the safety filter stopped the completion.
	SafetyBlocked

	// OtherStop covers recitation and any other abnormal finish reason.
	OtherStop

	// Empty means the model returned no candidates, or a normal stop with
	// empty text.
	Empty
)

// String returns a short label for logging.
func (k StopKind) String() string {
	switch k {
	case Success:
		return "success"
	case Truncated:
		return "truncated"
	case SafetyBlocked:
		return "safety_blocked"
	case OtherStop:
		return "other_stop"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one generation call.
type Outcome struct {
	Kind StopKind

	// Text is the completion text. Only meaningful when Kind is Success.
	Text string

	// Reason is the raw finish reason reported by the model, for logging and
	// error messages.
	Reason string
}

// outcomeFromResponse maps a raw Gemini response to an Outcome.
func outcomeFromResponse(resp *genai.GenerateContentResponse) Outcome {
	if resp == nil || len(resp.Candidates) == 0 {
		return Outcome{Kind: Empty, Reason: "no candidates"}
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonStop:
		text := resp.Text()
		if text == "" {
			return Outcome{Kind: Empty, Reason: "empty response"}
		}
		return Outcome{Kind: Success, Text: text, Reason: string(candidate.FinishReason)}
	case genai.FinishReasonMaxTokens:
		return Outcome{Kind: Truncated, Reason: string(candidate.FinishReason)}
	case genai.FinishReasonSafety:
		return Outcome{Kind: SafetyBlocked, Reason: string(candidate.FinishReason)}
	default:
		reason := string(candidate.FinishReason)
		if reason == "" {
			reason = "unknown"
		}
		return Outcome{Kind: OtherStop, Reason: reason}
	}
}
