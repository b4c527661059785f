// Package cmd provides the CLI commands for the CoachX backend.
//
// Commands:
//   - serve: HTTP API server (chat, plan generation, knowledge base, profile)
//   - ingest: load the knowledge base into the vector index and exit
//   - version: build and configuration summary
//
// All long-running commands handle SIGINT/SIGTERM and shut down gracefully
// via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/coachx/coachx/internal/log"
)

// Execute is the main entry point for the coachx binary.
func Execute() error {
	logger := log.New(log.Config{Level: logLevel()})
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe(os.Args[2:])
	case "ingest":
		return runIngest(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// logLevel is controlled by the DEBUG environment variable.
func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("CoachX - AI personal training assistant backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  coachx serve [addr]      Start the HTTP API server (default: 127.0.0.1:8000)")
	fmt.Println("  coachx ingest [--force]  Load the knowledge base into the vector index")
	fmt.Println("  coachx version           Show version and configuration")
	fmt.Println("  coachx help              Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY           Required for generation: Gemini API key")
	fmt.Println("  DATABASE_URL             Optional: overrides the postgres_* config fields")
	fmt.Println("  COACHX_KNOWLEDGE_DIR     Optional: knowledge base directory (default ./knowledge_base)")
	fmt.Println("  DEBUG                    Optional: enable debug logging")
}
