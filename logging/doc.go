// Package logging builds the slog loggers used by the engine and the CLI.
//
// A Config selects the minimum level, the output format (text for people,
// json for log collectors) and the destination writer:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
// Packages that log accept a *slog.Logger and fall back to Nop when none is
// given. The template core never logs.
package logging
