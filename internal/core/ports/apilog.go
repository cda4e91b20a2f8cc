package ports

import (
	"context"
	"time"

	"github.com/autodealer/showroom/internal/core/domain"
)

// LogRepository stores recorded API invocations.
type LogRepository interface {
	Insert(ctx context.Context, e *domain.LogEntry) error
	List(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error)
	// Purge deletes entries older than before, or all entries when before is nil.
	Purge(ctx context.Context, before *time.Time) (int64, error)
}

// SettingsRepository reads and writes boolean system settings.
type SettingsRepository interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// LoggingFlag reports whether API request logging is on. Implementations
// must not cache the value across calls unless they invalidate on change.
type LoggingFlag interface {
	Enabled(ctx context.Context) (bool, error)
}

// RequestLogger records API invocations when logging is enabled.
type RequestLogger interface {
	// Log writes e if the flag is on and reports whether a row was written.
	Log(ctx context.Context, e *domain.LogEntry) (bool, error)
}

// AdminService covers the superadmin dashboard.
type AdminService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Logs(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error)
	PurgeLogs(ctx context.Context, before *time.Time) (int64, error)
	LoggingEnabled(ctx context.Context) (bool, error)
	SetLoggingEnabled(ctx context.Context, enabled bool) error
}
