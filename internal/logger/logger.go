package logger

import (
	"fmt"
	"time"

	"github.com/straye-as/crm-reports/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger. JSON output is used when
// configured or in production.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// Field keys shared by access logs, report logs and jobs so that one
// report can be followed across all of them
const (
	KeyRequestID   = "request_id"
	KeyReport      = "report"
	KeySource      = "source"
	KeyUserID      = "user_id"
	KeyPeriodStart = "period_start"
	KeyPeriodEnd   = "period_end"
)

// Report is the field naming a report kind
func Report(kind string) zap.Field {
	return zap.String(KeyReport, kind)
}

// Source is the field naming a report data source
func Source(name string) zap.Field {
	return zap.String(KeySource, name)
}

// RequestFields returns the access-log fields of one request
func RequestFields(requestID, method, path, remoteAddr string) []zap.Field {
	return []zap.Field{
		zap.String(KeyRequestID, requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("remote_addr", remoteAddr),
	}
}

// WithReport scopes a logger to one report computation. An empty userID
// (anonymous caller) is left out.
func WithReport(logger *zap.Logger, kind, userID string) *zap.Logger {
	fields := []zap.Field{Report(kind)}
	if userID != "" {
		fields = append(fields, zap.String(KeyUserID, userID))
	}
	return logger.With(fields...)
}

// WithPeriod adds the resolved report window
func WithPeriod(logger *zap.Logger, start, end time.Time) *zap.Logger {
	return logger.With(
		zap.Time(KeyPeriodStart, start),
		zap.Time(KeyPeriodEnd, end),
	)
}
