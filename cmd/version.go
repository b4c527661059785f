package cmd

import (
	"fmt"
	"os"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// runVersion prints build information and a configuration summary.
func runVersion() {
	fmt.Printf("CoachX %s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	key := os.Getenv("GEMINI_API_KEY")
	fmt.Printf("GEMINI_API_KEY: %s\n", maskKey(key))
}

// maskKey shows only the edges of a credential, or reports it missing.
func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) < 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
