package config

import "encoding/json"

// maskedValue replaces sensitive fields in serialized configuration.
const maskedValue = "********"

// MarshalJSON masks sensitive fields so the configuration can be logged or
// exposed on a debug endpoint without leaking credentials.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursive MarshalJSON
	masked := alias(c)
	if masked.GeminiAPIKey != "" {
		masked.GeminiAPIKey = maskedValue
	}
	if masked.PostgresPassword != "" {
		masked.PostgresPassword = maskedValue
	}
	return json.Marshal(masked)
}
