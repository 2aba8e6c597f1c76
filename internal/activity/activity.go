// Package activity records user-visible audit events. Every entry goes to
// the logs store for display and to the process logger.
package activity

import (
	"io"
	"log/slog"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

type Logger struct {
	logs   *repository.LogRepository
	logger *slog.Logger
}

func New(logs *repository.LogRepository, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logger{logs: logs, logger: logger.With("component", "activity")}
}

func (l *Logger) Info(message string)    { l.record(message, models.LogLevelInfo) }
func (l *Logger) Success(message string) { l.record(message, models.LogLevelSuccess) }
func (l *Logger) Warning(message string) { l.record(message, models.LogLevelWarning) }
func (l *Logger) Error(message string)   { l.record(message, models.LogLevelError) }

func (l *Logger) record(message, level string) {
	entry := &models.LogEntry{
		Message:   message,
		Level:     level,
		Timestamp: time.Now(),
	}
	if err := l.logs.Add(entry); err != nil {
		l.logger.Error("failed to store activity entry", "error", err)
	}

	switch level {
	case models.LogLevelWarning:
		l.logger.Warn(message)
	case models.LogLevelError:
		l.logger.Error(message)
	default:
		l.logger.Info(message, "level", level)
	}
}
