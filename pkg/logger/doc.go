// Package logger builds configured log/slog loggers and provides typed
// attribute helpers so log keys stay consistent across the codebase.
//
// Services in this module never log by default: they hold a discard logger
// created with NewDiscard and only emit records when the caller injects a real
// logger via the service's WithLogger option.
//
//	log := logger.New(
//	    logger.WithService("authkit"),
//	    logger.WithLevel(slog.LevelDebug),
//	)
//	log.Info("password reset issued", logger.UserID(id), logger.Component("passreset"))
package logger
