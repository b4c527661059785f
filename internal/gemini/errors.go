package gemini

import "fmt"

// AuthError indicates the Gemini API key is missing or the client could not be
// initialized with it. It is distinct from GenerationError so the API boundary
// can report a configuration problem instead of a transient generation failure.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "gemini authentication failed"
	}
	return fmt.Sprintf("gemini authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// GenerationError indicates a generation call completed abnormally: an empty
// completion, a safety block, a non-length abnormal stop, or (at the plan
// layer) malformed JSON or missing required plan fields.
type GenerationError struct {
	// Reason is a short machine-readable cause, e.g. "SAFETY", "MAX_TOKENS",
	// "empty response", "invalid JSON".
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed: %s", e.Reason)
	}
	return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
