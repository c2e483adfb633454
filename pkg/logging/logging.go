package logging

import (
	"log"
	"os"
)

// debugEnabled is checked per call so a DEBUG=true loaded from .env after
// package init still takes effect.
func debugEnabled() bool {
	return os.Getenv("DEBUG") == "true"
}

// Info logs an informational message (always shown).
func Info(subsystem, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Debug logs a debug message (only shown if DEBUG=true).
func Debug(subsystem, format string, args ...any) {
	if debugEnabled() {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}
