// Package log provides the logging abstraction used by hashd components.
//
// Components depend on the [Logger] interface only. Two implementations are
// provided: [ZerologAdapter], which wraps github.com/rs/zerolog, and
// [NoopLogger], which discards everything and is the library default.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, log.FormatConsole, zerolog.InfoLevel)
//	sessionLog := logger.With(log.String("session", id))
//	sessionLog.Info("algorithm negotiated", log.String("algorithm", "sha256"))
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with an existing logging
// setup. With must return a Logger that attaches the given fields to every
// subsequent message.
package log
