package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/pkg/metrics"
)

// RequestLogService writes API log entries when the logging flag is on.
// The flag is consulted on every call.
type RequestLogService struct {
	flag ports.LoggingFlag
	repo ports.LogRepository
	log  zerolog.Logger
}

func NewRequestLogService(flag ports.LoggingFlag, repo ports.LogRepository, log zerolog.Logger) *RequestLogService {
	return &RequestLogService{flag: flag, repo: repo, log: log}
}

func (s *RequestLogService) Log(ctx context.Context, e *domain.LogEntry) (bool, error) {
	enabled, err := s.flag.Enabled(ctx)
	if err != nil {
		metrics.RequestLogEntriesTotal.WithLabelValues("flag_error").Inc()
		return false, fmt.Errorf("read logging flag: %w", err)
	}
	if !enabled {
		metrics.RequestLogEntriesTotal.WithLabelValues("disabled").Inc()
		return false, nil
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.LatencyMs < 0 {
		e.LatencyMs = 0
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		metrics.RequestLogEntriesTotal.WithLabelValues("write_error").Inc()
		return false, fmt.Errorf("insert log entry: %w", err)
	}
	metrics.RequestLogEntriesTotal.WithLabelValues("written").Inc()
	return true, nil
}

// settingsFlag reads the logging flag from system settings on every call.
type settingsFlag struct {
	repo ports.SettingsRepository
}

// NewSettingsFlag returns a LoggingFlag backed by the system_settings row.
func NewSettingsFlag(repo ports.SettingsRepository) ports.LoggingFlag {
	return settingsFlag{repo: repo}
}

func (f settingsFlag) Enabled(ctx context.Context) (bool, error) {
	return f.repo.GetBool(ctx, domain.SettingAPILogging)
}
