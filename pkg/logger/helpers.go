package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogDeletion logs the outcome of a single deletion attempt
func LogDeletion(itemID, kind, verdict string, err error) {
	fields := map[string]interface{}{
		"item_id": itemID,
		"kind":    kind,
		"verdict": verdict,
	}

	logger := GetLogger().WithFields(fields)

	if err != nil {
		logger.WithError(err).Error("Deletion failed")
	} else if verdict == "success" {
		logger.Info("Item deleted")
	} else {
		logger.Warn("Deletion not confirmed")
	}
}

// LogRateLimit logs rate governor events
func LogRateLimit(used, cap int, window time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"used":   used,
		"cap":    cap,
		"window": window.String(),
		"action": "rate_limited",
	}).Warn("Hourly deletion cap reached, halting")
}

// LogSweepProgress logs traversal progress for a period
func LogSweepProgress(period string, deleted, skipped, errored int) {
	GetLogger().WithFields(map[string]interface{}{
		"period":  period,
		"deleted": deleted,
		"skipped": skipped,
		"errored": errored,
	}).Info("Sweep progress")
}

// LogHalt logs a run halt with its reason
func LogHalt(reason string, err error) {
	logger := GetLogger().WithField("reason", reason)
	if err != nil {
		logger = logger.WithError(err)
	}
	logger.Warn("Run halted")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogMetrics logs per-run summary metrics
func LogMetrics(operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}

	GetLogger().InfoWithFields("Run metrics", fields)
}

// MustGetLogger gets the logger or panics if it fails
func MustGetLogger() Logger {
	logger := GetLogger()
	if logger == nil {
		panic("logger not initialized")
	}
	return logger
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
