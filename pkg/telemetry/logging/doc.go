// Package logging provides structured logging for Janus components.
//
// # Overview
//
// The logging package wraps log/slog with configuration for level and
// output format, plus automatic redaction of credential material (bearer
// tokens, API-key shaped strings) from log attributes. Components receive
// a *Logger at construction; nothing in Janus logs through package-level
// globals.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Warn("rate limit store unavailable",
//	    "identifier", id,
//	    "error", err,
//	)
//
// # Redaction
//
// String attribute values pass through a Redactor before being written.
// Bearer tokens and API-key shaped strings are replaced with fixed
// placeholders so a misplaced credential never reaches log storage.
//
// # Thread Safety
//
// Logger is safe for concurrent use; it holds no mutable state beyond
// the underlying slog handler.
package logging
