package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type adminService struct {
	users    ports.UserRepository
	rooms    ports.RoomRepository
	cars     ports.CarRepository
	bookings ports.BookingRepository
	payments ports.PaymentRepository
	logs     ports.LogRepository
	settings ports.SettingsRepository
	log      zerolog.Logger
}

// AdminDeps groups the repositories the superadmin dashboard reads from.
type AdminDeps struct {
	Users    ports.UserRepository
	Rooms    ports.RoomRepository
	Cars     ports.CarRepository
	Bookings ports.BookingRepository
	Payments ports.PaymentRepository
	Logs     ports.LogRepository
	Settings ports.SettingsRepository
}

func NewAdminService(d AdminDeps, log zerolog.Logger) ports.AdminService {
	return &adminService{
		users:    d.Users,
		rooms:    d.Rooms,
		cars:     d.Cars,
		bookings: d.Bookings,
		payments: d.Payments,
		logs:     d.Logs,
		settings: d.Settings,
		log:      log,
	}
}

func (s *adminService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: users: %w", err)
	}
	rooms, active, err := s.rooms.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: rooms: %w", err)
	}
	cars, err := s.cars.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: cars: %w", err)
	}
	byStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: bookings: %w", err)
	}
	paid, revenue, err := s.payments.Completed(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: payments: %w", err)
	}
	return &domain.DashboardStats{
		UsersByRole:       byRole,
		Rooms:             rooms,
		ActiveRooms:       active,
		Cars:              cars,
		BookingsByStatus:  byStatus,
		CompletedPayments: paid,
		Revenue:           revenue,
	}, nil
}

func (s *adminService) Logs(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return s.logs.List(ctx, f)
}

func (s *adminService) PurgeLogs(ctx context.Context, before *time.Time) (int64, error) {
	n, err := s.logs.Purge(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge logs: %w", err)
	}
	s.log.Info().Int64("deleted", n).Msg("api logs purged")
	return n, nil
}

func (s *adminService) LoggingEnabled(ctx context.Context) (bool, error) {
	return s.settings.GetBool(ctx, domain.SettingAPILogging)
}

func (s *adminService) SetLoggingEnabled(ctx context.Context, enabled bool) error {
	if err := s.settings.SetBool(ctx, domain.SettingAPILogging, enabled); err != nil {
		return fmt.Errorf("set logging flag: %w", err)
	}
	s.log.Info().Bool("enabled", enabled).Msg("api logging toggled")
	return nil
}
